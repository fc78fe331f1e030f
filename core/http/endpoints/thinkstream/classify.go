package thinkstream

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
	"github.com/mudler/thinkstream/core/application"
	"github.com/mudler/thinkstream/core/http/middleware"
	"github.com/mudler/thinkstream/core/schema"
	"github.com/mudler/thinkstream/pkg/reasoning/stream"
	"github.com/mudler/xlog"
)

// ClassifyEndpoint splits line-oriented model output into payload and reasoning events.
// JSON bodies carry a schema.ClassifyRequest; text/plain bodies are classified
// while they are read, with ?fail_fast= and ?stream= as switches.
// @Summary Classify model output line by line
// @Param request body schema.ClassifyRequest true "query params"
// @Success 200 {object} schema.ClassifyResponse "Response"
// @Router /v1/reasoning/classify [post]
func ClassifyEndpoint(app *application.Application) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := middleware.GetCorrelationID(c)
		rt := app.Runtime()
		streaming := wantsEventStream(c)

		var events iter.Seq2[stream.Event[any], error]
		if isPlainText(c) {
			pipeline := rt.Pipeline
			failFast, set, err := boolQueryParam(c, "fail_fast")
			if err != nil {
				return err
			}
			if set {
				pipeline = rt.PipelineFor(policyOf(failFast))
			}
			wantStream, set, err := boolQueryParam(c, "stream")
			if err != nil {
				return err
			}
			if set {
				streaming = wantStream
			}

			body := io.Reader(c.Request().Body)
			if streaming {
				if body, err = duplexBody(c); err != nil {
					return err
				}
			}
			events = pipeline.ClassifyReader(c.Request().Context(), body)
		} else {
			input := new(schema.ClassifyRequest)
			if err := c.Bind(input); err != nil {
				return err
			}
			pipeline := rt.Pipeline
			if input.FailFast != nil {
				pipeline = rt.PipelineFor(policyOf(*input.FailFast))
			}
			if len(input.Lines) > 0 {
				events = pipeline.Classify(slices.Values(input.Lines))
			} else {
				events = pipeline.ClassifyText(input.Text)
			}
			streaming = streaming || input.Stream
		}

		xlog.Debug("Classify request", "id", id, "stream", streaming)
		if streaming {
			return streamEvents(c, id, events)
		}
		return collectEvents(c, id, events)
	}
}

func collectEvents(c echo.Context, id string, events iter.Seq2[stream.Event[any], error]) error {
	collected, err := stream.Collect(events)
	resp := schema.ClassifyResponse{
		ID:     id,
		Events: collected,
	}
	if resp.Events == nil {
		resp.Events = []stream.Event[any]{}
	}

	if err != nil {
		if !errors.Is(err, stream.ErrDecode) {
			return err
		}
		resp.Error = apiErrorFor(err)
		return c.JSON(http.StatusUnprocessableEntity, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

func streamEvents(c echo.Context, id string, events iter.Seq2[stream.Event[any], error]) error {
	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	for ev, err := range events {
		if err != nil {
			xlog.Debug("Classify stream stopped", "id", id, "error", err)
			sendSSEEvent(c, &schema.ClassifyStreamEvent{
				ID:    id,
				Type:  schema.ClassifyErrorType,
				Error: apiErrorFor(err),
			})
			break
		}
		sendSSEEvent(c, &schema.ClassifyStreamEvent{
			ID:    id,
			Type:  schema.ClassifyEventType,
			Event: &ev,
		})
		c.Response().Flush()
	}

	sendSSEEvent(c, &schema.ClassifyStreamEvent{ID: id, Type: schema.ClassifyDoneType})
	fmt.Fprintf(c.Response().Writer, "data: [DONE]\n\n")
	c.Response().Flush()
	return nil
}
