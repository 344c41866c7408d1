package sdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// defaultStatusCode is reported when the envelope has no meta.code.
const defaultStatusCode = 500

// Response is the DandB response envelope:
//
//	{
//	  "meta":     {"code": 200, "error_code": "USR030"},
//	  "response": {"results": ...},
//	  "error":    [...]
//	}
//
// A Response is returned for every request that produced a JSON object,
// whatever the HTTP status. Check IsValid before using the data.
//
// Example:
//
//	resp, err := client.BusinessSearchByDUNS(ctx, "007280554")
//	if err != nil {
//	    return err // transport failure
//	}
//	if !resp.IsValid() {
//	    if resp.HasErrorCode("USER_TOKEN_EXPIRED") {
//	        // refresh and retry
//	    }
//	    errs, _ := resp.Errors()
//	    return fmt.Errorf("search failed: %v", errs)
//	}
//	results, _ := resp.ResponseData()
type Response struct {
	raw        map[string]any
	statusCode int
	errorCode  string
	hasCode    bool
	httpStatus int
	header     http.Header
}

// NewResponse builds a Response from a raw JSON envelope. The body must be
// a JSON object.
func NewResponse(body []byte) (*Response, error) {
	raw, err := decodeObject(body)
	if err != nil {
		return nil, NewError(ErrorTypeDecode, "response body is not a JSON object", err)
	}
	return newResponse(raw, http.StatusOK, nil), nil
}

func newResponse(raw map[string]any, httpStatus int, header http.Header) *Response {
	r := &Response{
		raw:        raw,
		statusCode: defaultStatusCode,
		httpStatus: httpStatus,
		header:     header,
	}

	meta, _ := raw["meta"].(map[string]any)
	if code, ok := intValue(meta["code"]); ok {
		r.statusCode = code
	}
	if ec, ok := scalarString(meta["error_code"]); ok {
		r.errorCode = ec
		r.hasCode = true
	}
	return r
}

// StatusCode returns meta.code, or 500 when it is absent or not numeric.
func (r *Response) StatusCode() int {
	return r.statusCode
}

// HTTPStatus returns the status line code of the HTTP response.
func (r *Response) HTTPStatus() int {
	return r.httpStatus
}

// Header returns the HTTP response headers.
func (r *Response) Header() http.Header {
	return r.header
}

// ErrorCode returns meta.error_code if present.
func (r *Response) ErrorCode() (string, bool) {
	return r.errorCode, r.hasCode
}

// HasErrorCode reports whether meta.error_code matches the symbolic
// name, e.g. "USER_TOKEN_EXPIRED". Unknown names never match.
func (r *Response) HasErrorCode(name string) bool {
	code, ok := LookupErrorCode(name)
	if !ok || !r.hasCode {
		return false
	}
	return string(code) == r.errorCode
}

// ResponseData returns response.results. ok is false both when the
// results are absent and when the request failed; use IsValid to tell
// them apart.
func (r *Response) ResponseData() (any, bool) {
	resp, _ := r.raw["response"].(map[string]any)
	results, ok := resp["results"]
	if !ok || results == nil {
		return nil, false
	}
	return results, true
}

// Errors returns the top level error list if present. A single error
// value is returned as a one-element list.
func (r *Response) Errors() ([]any, bool) {
	v, ok := r.raw["error"]
	if !ok || v == nil {
		return nil, false
	}
	if list, ok := v.([]any); ok {
		return list, true
	}
	return []any{v}, true
}

// IsValid reports whether meta.code is 200.
func (r *Response) IsValid() bool {
	return r.statusCode == http.StatusOK
}

// ToMap returns the decoded body exactly as received. Numbers are
// json.Number values.
func (r *Response) ToMap() map[string]any {
	return r.raw
}

// MarshalJSON re-encodes the original body.
func (r *Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.raw)
}

// DecodeResults unmarshals response.results into dest.
// It returns ErrNoResults when the envelope carries no results.
//
// Example:
//
//	var businesses []struct {
//	    DUNS string `json:"duns"`
//	    Name string `json:"name"`
//	}
//	if err := resp.DecodeResults(&businesses); err != nil {
//	    return err
//	}
func (r *Response) DecodeResults(dest any) error {
	results, ok := r.ResponseData()
	if !ok {
		return ErrNoResults
	}
	data, err := json.Marshal(results)
	if err != nil {
		return NewError(ErrorTypeDecode, "failed to re-encode results", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return NewError(ErrorTypeDecode, fmt.Sprintf("failed to decode results into %T", dest), err)
	}
	return nil
}

// decodeBody turns a round trip into a JSON object. Error statuses
// without a JSON object body become *APIError.
func decodeBody(in *incoming) (map[string]any, error) {
	raw, err := decodeObject(in.body)
	if err == nil {
		return raw, nil
	}
	if in.status >= http.StatusBadRequest {
		return nil, &APIError{
			StatusCode: in.status,
			Body:       truncate(in.body, maxErrorBody),
		}
	}
	return nil, NewError(ErrorTypeDecode, "response body is not a JSON object", err).
		WithDetail("status", in.status).
		WithDetail("body", truncate(in.body, maxErrorBody))
}

func decodeObject(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrInvalidResponse)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON object, got %T", ErrInvalidResponse, v)
	}
	return obj, nil
}

// intValue reads an integer from a JSON number or numeric string.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil && f == float64(int(f)) {
			return int(f), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case int:
		return n, true
	}
	return 0, false
}

// scalarString renders a JSON scalar as text.
func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	case bool:
		return strconv.FormatBool(s), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	}
	return "", false
}
