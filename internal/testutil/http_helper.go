// Package testutil provides utility functions for testing HTTP handlers.
package testutil

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
)

// MakeJSONRequest is a helper function for making JSON requests in tests.
// A nil body sends no payload; a nil cookie sends the request unauthenticated.
func MakeJSONRequest(body any, cookie *http.Cookie, r http.Handler, endpoint string, method string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}

	req, _ := http.NewRequest(method, endpoint, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	resp := map[string]interface{}{}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)

	return rec, resp
}

// MakeMultipartRequest posts content as the form file field, declared with contentType.
// An empty field sends a form with no file part.
func MakeMultipartRequest(field, filename, contentType string, content []byte, cookie *http.Cookie, r http.Handler, endpoint string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", multipart.FileContentDisposition(field, filename))
		h.Set("Content-Type", contentType)
		part, _ := w.CreatePart(h)
		_, _ = part.Write(content)
	} else {
		_ = w.WriteField("note", "no file")
	}
	_ = w.Close()

	req, _ := http.NewRequest(http.MethodPost, endpoint, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	resp := map[string]interface{}{}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)

	return rec, resp
}

// StringPtr is a helper function to get a pointer to a string
func StringPtr(s string) *string {
	return &s
}
