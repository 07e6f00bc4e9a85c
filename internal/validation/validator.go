package validation

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/blog-publishing-api/internal/models"
)

// ValidationError represents a single violated field rule
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Messages holds the display text for every field rule.
// Deployments may swap the whole set for another locale.
type Messages struct {
	TitleMissing        string
	TitleTooLong        string
	BodyMissing         string
	StatusMissing       string
	StatusInvalid       string
	PublishedAtRequired string

	AuthorNameMissing  string
	AuthorNameTooLong  string
	CommentBodyMissing string

	EmailMissing     string
	EmailInvalid     string
	PasswordTooShort string
	PasswordTooLong  string
	PasswordMismatch string
	NameMissing      string
}

// DefaultMessages returns the Japanese message set
func DefaultMessages() Messages {
	return Messages{
		TitleMissing:        "タイトルを入力してください",
		TitleTooLong:        "タイトルは100文字以内で入力してください",
		BodyMissing:         "本文を入力してください",
		StatusMissing:       "ステータスを入力してください",
		StatusInvalid:       "ステータスの値が不正です",
		PublishedAtRequired: "公開日時は公開状態の場合必須です",

		AuthorNameMissing:  "投稿者名を入力してください",
		AuthorNameTooLong:  "投稿者名は1文字以上50文字以内で入力してください",
		CommentBodyMissing: "コメント本文を入力してください",

		EmailMissing:     "メールアドレスを入力してください",
		EmailInvalid:     "メールアドレスの形式が正しくありません",
		PasswordTooShort: "パスワードは6文字以上で入力してください",
		PasswordTooLong:  "パスワードは72バイト以内で入力してください",
		PasswordMismatch: "パスワード（確認用）とパスワードの入力が一致しません",
		NameMissing:      "名前を入力してください",
	}
}

// Validator maps proposed entity fields to the list of violated rules.
// It never short-circuits across fields.
type Validator struct {
	messages Messages
}

// NewValidator creates a validator with the default message set
func NewValidator() *Validator {
	return NewValidatorWithMessages(DefaultMessages())
}

// NewValidatorWithMessages creates a validator with custom message text
func NewValidatorWithMessages(messages Messages) *Validator {
	return &Validator{messages: messages}
}

var (
	knownStatuses = statusValues(models.ValidStatuses)
	articleFields = []string{"title", "body", "status", "published_at"}
	commentFields = []string{"author_name", "body"}
	signUpFields  = []string{"email", "password", "password_confirmation", "name"}
)

// ValidateArticle checks an article after patch merge and normalization
func (v *Validator) ValidateArticle(article *models.Article) []ValidationError {
	m := v.messages
	err := validation.ValidateStruct(article,
		validation.Field(&article.Title,
			append(presence(m.TitleMissing),
				validation.RuneLength(1, models.MaxTitleLength).Error(m.TitleTooLong))...),
		validation.Field(&article.Body, presence(m.BodyMissing)...),
		validation.Field(&article.Status,
			validation.Required.Error(m.StatusMissing),
			validation.In(knownStatuses...).Error(m.StatusInvalid)),
		validation.Field(&article.PublishedAt,
			validation.When(article.IsPublished(),
				validation.Required.Error(m.PublishedAtRequired))),
	)
	return collect(err, articleFields)
}

// ValidateComment checks a comment before it is stored
func (v *Validator) ValidateComment(comment *models.Comment) []ValidationError {
	m := v.messages
	err := validation.ValidateStruct(comment,
		validation.Field(&comment.AuthorName,
			append(presence(m.AuthorNameMissing),
				validation.RuneLength(1, models.MaxAuthorNameLength).Error(m.AuthorNameTooLong))...),
		validation.Field(&comment.Body, presence(m.CommentBodyMissing)...),
	)
	return collect(err, commentFields)
}

// ValidateSignUp checks a registration payload
func (v *Validator) ValidateSignUp(input *models.SignUpInput) []ValidationError {
	m := v.messages
	err := validation.ValidateStruct(input,
		validation.Field(&input.Email,
			validation.Required.Error(m.EmailMissing),
			is.EmailFormat.Error(m.EmailInvalid)),
		validation.Field(&input.Password,
			validation.Required.Error(m.PasswordTooShort),
			validation.RuneLength(models.MinPasswordLength, 0).Error(m.PasswordTooShort),
			validation.NewStringRuleWithError(
				func(s string) bool { return len(s) <= models.MaxPasswordBytes },
				validation.NewError("validation_password_too_long", m.PasswordTooLong),
			)),
		validation.Field(&input.PasswordConfirmation,
			validation.In(input.Password).Error(m.PasswordMismatch)),
		validation.Field(&input.Name, presence(m.NameMissing)...),
	)
	return collect(err, signUpFields)
}

// MessageTexts flattens violations into their display text
func MessageTexts(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Message
	}
	return out
}

func statusValues(statuses []models.ArticleStatus) []interface{} {
	out := make([]interface{}, len(statuses))
	for i, s := range statuses {
		out[i] = s
	}
	return out
}

// presence rejects empty and whitespace-only strings with the same message
func presence(message string) []validation.Rule {
	return []validation.Rule{
		validation.Required.Error(message),
		validation.NewStringRuleWithError(
			func(s string) bool { return strings.TrimSpace(s) != "" },
			validation.NewError("validation_blank", message),
		),
	}
}

// collect orders ozzo's per-field errors by the given field list
func collect(err error, fields []string) []ValidationError {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Field: "base", Message: err.Error()}}
	}

	var out []ValidationError
	for _, field := range fields {
		if fe, ok := fieldErrs[field]; ok && fe != nil {
			out = append(out, ValidationError{Field: field, Message: fe.Error()})
		}
	}
	return out
}
