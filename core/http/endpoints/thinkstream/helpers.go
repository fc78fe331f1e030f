package thinkstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mudler/thinkstream/core/schema"
	"github.com/mudler/thinkstream/pkg/reasoning/stream"
	"github.com/mudler/xlog"
)

func isPlainText(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMETextPlain)
}

func wantsEventStream(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), "text/event-stream")
}

// boolQueryParam parses an optional boolean query parameter. set is false
// when the parameter is absent.
func boolQueryParam(c echo.Context, name string) (value, set bool, err error) {
	v := c.QueryParam(name)
	if v == "" {
		return false, false, nil
	}
	value, err = strconv.ParseBool(v)
	if err != nil {
		return false, false, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s value %q", name, v))
	}
	return value, true, nil
}

// duplexBody returns a request body that stays readable while the response
// is being streamed. HTTP/1 servers discard unread request bodies on the
// first flush unless full duplex is enabled; when the writer cannot do that,
// the body is read up front instead.
func duplexBody(c echo.Context) (io.Reader, error) {
	req := c.Request()
	if req.ProtoMajor >= 2 {
		return req.Body, nil
	}
	err := http.NewResponseController(c.Response()).EnableFullDuplex()
	if err == nil {
		return req.Body, nil
	}
	if !errors.Is(err, http.ErrNotSupported) {
		return nil, fmt.Errorf("enabling full duplex: %w", err)
	}

	xlog.Debug("Full duplex not supported, buffering request body", "error", err)
	body, err := readPlainText(c)
	if err != nil {
		return nil, err
	}
	return strings.NewReader(body), nil
}

// readPlainText returns the raw body of text/plain requests.
func readPlainText(c echo.Context) (string, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("cannot read request body: %v", err))
	}
	return string(body), nil
}

func policyOf(failFast bool) stream.Policy {
	if failFast {
		return stream.FailFast
	}
	return stream.Resilient
}

func apiErrorFor(err error) *schema.APIError {
	var decodeErr *stream.DecodeError
	if errors.As(err, &decodeErr) {
		return &schema.APIError{
			Code:    http.StatusUnprocessableEntity,
			Message: decodeErr.Error(),
			Type:    "decode_error",
			Line:    decodeErr.Line,
		}
	}
	return &schema.APIError{
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
		Type:    "stream_error",
	}
}

func sendSSEEvent(c echo.Context, event *schema.ClassifyStreamEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		xlog.Error("Failed to marshal SSE event", "error", err)
		return
	}
	fmt.Fprintf(c.Response().Writer, "event: %s\ndata: %s\n\n", event.Type, string(data))
}
