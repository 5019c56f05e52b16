// Package apperr はハンドラが返すエラーの種別と HTTP ステータスの対応を定義する。
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind はエラーの種別
type Kind int

const (
	// 入力不備 (400)
	KindValidation Kind = iota + 1
	// 対象なし (404)
	KindNotFound
	// ストレージ障害・想定外のエラー (500)
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// StatusCode は種別に対応する HTTP ステータスを返す
func (k Kind) StatusCode() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error は種別とクライアント向けメッセージを持つエラー
type Error struct {
	Kind Kind
	// クライアントに返してよいメッセージ
	Message string
	// 元のエラー (ログ用)
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode は HTTP ステータスを返す
func (e *Error) StatusCode() int {
	return e.Kind.StatusCode()
}

// Validation は入力エラーを生成
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NotFound は未発見エラーを生成
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Storage はストレージエラーを生成
// message が空の場合は汎用メッセージを返す
func Storage(message string, err error) *Error {
	if message == "" {
		message = http.StatusText(http.StatusInternalServerError)
	}
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

// KindOf はエラーの種別を返す。分類されていないエラーは KindStorage
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// PublicMessage はクライアントに返すメッセージを返す
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return http.StatusText(http.StatusInternalServerError)
}
