package response

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"personal-website/internal/apperr"
)

const (
	contentTypeJSON = "application/json"
	contentTypeHTML = "text/html; charset=utf-8"
)

// JSON レスポンスを生成
func JSON(code int, data interface{}) events.APIGatewayProxyResponse {
	body, err := json.Marshal(data)
	if err != nil {
		return errorResponse(http.StatusInternalServerError, "failed to marshal response")
	}
	return events.APIGatewayProxyResponse{
		StatusCode: code,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type": contentTypeJSON,
		},
	}
}

// 成功レスポンスを生成
func Success(data interface{}) events.APIGatewayProxyResponse {
	return JSON(http.StatusOK, data)
}

// 作成成功レスポンス (Location に作成先を入れる)
func Created(message, location string) events.APIGatewayProxyResponse {
	res := Message(http.StatusCreated, message)
	res.Headers["Location"] = location
	return res
}

// {"message": ...} 形式のレスポンス
func Message(code int, message string) events.APIGatewayProxyResponse {
	return JSON(code, map[string]string{
		"message": message,
	})
}

// 記事本文 (HTML) をそのまま返す
func HTML(body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": contentTypeHTML,
		},
	}
}

// 本文なしレスポンス
func NoContent() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusNoContent,
		Body:       "",
	}
}

// エラーレスポンス
func errorResponse(code int, message string) events.APIGatewayProxyResponse {
	body, err := json.Marshal(map[string]string{
		"error": message,
	})
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: code,
			Body:       `{"error":"failed to marshal error response"}`,
			Headers: map[string]string{
				"Content-Type": contentTypeJSON,
			},
		}
	}
	return events.APIGatewayProxyResponse{
		StatusCode: code,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type": contentTypeJSON,
		},
	}
}

// バッドリクエストエラー
func BadRequest(message string) events.APIGatewayProxyResponse {
	return Message(http.StatusBadRequest, message)
}

// リソース未発見エラー
func NotFound(message string) events.APIGatewayProxyResponse {
	return Message(http.StatusNotFound, message)
}

// 内部サーバーエラー
func InternalServerError(message string) events.APIGatewayProxyResponse {
	return errorResponse(http.StatusInternalServerError, message)
}

// FromError はエラー種別からレスポンスを決める
// 400/404 は message、500 は error キーで返す
func FromError(err error) events.APIGatewayProxyResponse {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return BadRequest(apperr.PublicMessage(err))
	case apperr.KindNotFound:
		return NotFound(apperr.PublicMessage(err))
	default:
		return InternalServerError(apperr.PublicMessage(err))
	}
}
