package request

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"isp-image-guard-service/domain"
)

var (
	ErrNotIdentified = errors.New("viewer is not identified")
	ErrNoPayload     = errors.New("payload is not attached")
)

type Viewer struct {
	ViewerId    string
	DisplayName string
}

type Context struct {
	request        *http.Request
	responseWriter http.ResponseWriter

	endpoint string

	identified bool
	viewer     *Viewer

	adminAuthenticated bool

	payload *domain.Payload

	queryParams map[string]string
}

func NewContext(request *http.Request, response http.ResponseWriter, endpoint string) *Context {
	return &Context{
		request:        request,
		responseWriter: response,
		endpoint:       endpoint,
	}
}

func (c *Context) Request() *http.Request {
	return c.request
}

func (c *Context) ResponseWriter() http.ResponseWriter {
	return c.responseWriter
}

func (c *Context) SetResponseWriter(writer http.ResponseWriter) {
	c.responseWriter = writer
}

func (c *Context) Endpoint() string {
	return c.endpoint
}

func (c *Context) Identify(viewer Viewer) {
	c.identified = true
	c.viewer = &viewer
}

func (c *Context) Viewer() (Viewer, error) {
	if !c.identified {
		return Viewer{}, ErrNotIdentified
	}
	return *c.viewer, nil
}

func (c *Context) IsAdminAuthenticated() bool {
	return c.adminAuthenticated
}

func (c *Context) AuthenticateAdmin() {
	c.adminAuthenticated = true
}

func (c *Context) SetPayload(payload *domain.Payload) {
	c.payload = payload
}

func (c *Context) Payload() (*domain.Payload, error) {
	if c.payload == nil {
		return nil, ErrNoPayload
	}
	return c.payload, nil
}

func (c *Context) Context() context.Context {
	return c.request.Context()
}

func (c *Context) SetContext(ctx context.Context) {
	c.request = c.request.WithContext(ctx)
}

func (c *Context) Param(name string) string {
	value := c.request.Header.Get(name)
	if value != "" {
		return strings.TrimSpace(value)
	}

	if c.queryParams == nil {
		query := c.request.URL.Query()
		c.queryParams = map[string]string{}
		for key, values := range query {
			if len(values) == 0 {
				continue
			}
			c.queryParams[strings.ToLower(key)] = values[0]
		}
	}
	value = c.queryParams[strings.ToLower(name)]

	return strings.TrimSpace(value)
}
