package utilities

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"github.com/sachin-security/sachin-security-sub000/internal/model"
)

// CallOption adjusts the gin context before a simulated call reaches the handler.
type CallOption func(*gin.Context)

// WithParams sets route parameters such as :id.
func WithParams(params ...gin.Param) CallOption {
	return func(c *gin.Context) { c.Params = params }
}

// WithSession places session on the context as the Request Gate would.
func WithSession(session model.Session) CallOption {
	return func(c *gin.Context) { c.Set(SessionKey, session) }
}

// SimulateAPICall runs handlerFunc against a JSON request without a router or middleware.
// A nil body sends an empty payload. It returns the recorder and the decoded JSON body.
func SimulateAPICall(
	handlerFunc gin.HandlerFunc,
	route string,
	method string,
	body any,
	opts ...CallOption,
) (*httptest.ResponseRecorder, map[string]interface{}, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		payload = b
	}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req, err := http.NewRequest(method, route, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	for _, opt := range opts {
		opt(c)
	}
	handlerFunc(c)

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		return rec, nil, err
	}
	return rec, resp, nil
}
