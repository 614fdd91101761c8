package requester

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// DecodeFunc extracts a typed payload from a successful response body
type DecodeFunc[T any] func(body []byte) (T, error)

const maxErrorBodyInMessage = 200

// ParseResponse converts a raw response into a CallResult. Only status 200
// is a success; every other status is an http failure carrying the status.
func ParseResponse[T any](resp *Response, decode DecodeFunc[T]) CallResult[T] {
	if resp == nil {
		return Failure[T](internalFailure(fmt.Errorf("no response to parse")))
	}

	if resp.StatusCode != http.StatusOK {
		return Failure[T](&CallError{
			Kind:       KindHTTP,
			StatusCode: resp.StatusCode,
			Message:    httpErrorMessage(resp),
		})
	}

	payload, err := decode(resp.Body)
	if err != nil {
		de := &DecodeError{Err: err}
		return Failure[T](&CallError{
			Kind:       KindDecode,
			StatusCode: resp.StatusCode,
			Message:    de.Error(),
			cause:      de,
		})
	}
	return Success(payload)
}

func httpErrorMessage(resp *Response) string {
	if msg := strings.TrimSpace(resp.StatusMessage); msg != "" {
		return fmt.Sprintf("remote service returned status %d: %s", resp.StatusCode, msg)
	}
	if body := strings.TrimSpace(string(resp.Body)); body != "" && utf8.ValidString(body) {
		if len(body) > maxErrorBodyInMessage {
			body = body[:maxErrorBodyInMessage] + "..."
		}
		return fmt.Sprintf("remote service returned status %d: %s", resp.StatusCode, body)
	}
	return fmt.Sprintf("remote service returned status %d", resp.StatusCode)
}

// DecodeText returns the body as text, rejecting invalid UTF-8
func DecodeText(body []byte) (string, error) {
	if !utf8.Valid(body) {
		return "", fmt.Errorf("body is not valid UTF-8")
	}
	return string(body), nil
}
