package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-playground/validator/v10"

	"personal-website/internal/apperr"
	"personal-website/internal/model"
)

const (
	msgBodyRequired        = "Blog post required"
	msgMalformedBody       = "Malformed blog post"
	msgTitleAndHTMLMissing = "Title and HTML are required"
)

var validate = validator.New()

// requestBody は本文を取り出す (base64 の場合はデコード)
func requestBody(req events.APIGatewayProxyRequest) (string, error) {
	if !req.IsBase64Encoded {
		return req.Body, nil
	}
	b, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return "", apperr.Validation(msgMalformedBody)
	}
	return string(b), nil
}

// decodePostRequest は本文を1つの JSON オブジェクトとして読み、必須項目を検証する
func decodePostRequest(body string) (model.PostRequest, error) {
	var req model.PostRequest
	if body == "" {
		return req, apperr.Validation(msgBodyRequired)
	}

	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(&req); err != nil {
		return req, &apperr.Error{Kind: apperr.KindValidation, Message: msgMalformedBody, Err: err}
	}
	if err := ensureSingleJSON(dec); err != nil {
		return req, &apperr.Error{Kind: apperr.KindValidation, Message: msgMalformedBody, Err: err}
	}

	if err := validate.Struct(req); err != nil {
		return req, &apperr.Error{Kind: apperr.KindValidation, Message: msgTitleAndHTMLMissing, Err: err}
	}
	return req, nil
}

// ensureSingleJSON は JSON の後ろに余計なデータがないことを確認する
func ensureSingleJSON(dec *json.Decoder) error {
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("request body must only contain a single JSON object")
	}
	return nil
}
