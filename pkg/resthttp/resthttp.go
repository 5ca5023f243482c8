package resthttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fox-one/pkg/logger"
	"github.com/go-resty/resty/v2"
)

var (
	clientOnce sync.Once
	client     *resty.Client
)

// StatusError non 2xx response
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("resthttp: %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

// IsNotFound reports whether err is a 404 response
func IsNotFound(err error) bool {
	se, ok := err.(*StatusError)
	return ok && se.Code == http.StatusNotFound
}

// Client shared json client, server errors are retried twice
func Client() *resty.Client {
	clientOnce.Do(func() {
		client = resty.New().
			SetHeader("Content-Type", "application/json").
			SetTimeout(10 * time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(200 * time.Millisecond).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err != nil || r.StatusCode() >= http.StatusInternalServerError
			})
	})

	return client
}

// Get decodes the json body of url into resp
func Get(ctx context.Context, url string, resp interface{}) error {
	log := logger.FromContext(ctx).WithField("url", url)

	r, err := Client().R().SetContext(ctx).Get(url)
	if err != nil {
		log.WithError(err).Errorln("request failed")
		return err
	}

	log.Debugln("resp.status:", r.Status())
	if !r.IsSuccess() {
		return &StatusError{Code: r.StatusCode(), Body: string(r.Body())}
	}

	if resp == nil {
		return nil
	}

	return json.Unmarshal(r.Body(), resp)
}
