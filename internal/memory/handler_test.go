package memory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lokah-app/lokah/internal/gateway"
	"github.com/lokah-app/lokah/internal/pipeline"
	"github.com/lokah-app/lokah/internal/reply"
)

type fakeGateway struct {
	text  string
	err   error
	calls int
	last  gateway.Request
}

func (f *fakeGateway) Complete(_ context.Context, req gateway.Request) (string, error) {
	f.calls++
	f.last = req
	return f.text, f.err
}

func newHandler(t *testing.T, gw *fakeGateway) *Handler {
	t.Helper()
	n, err := reply.NewNormalizer()
	require.NoError(t, err)
	return NewHandler(NewService(pipeline.New(gw, n)))
}

func post(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/functions/v1/extract-memory", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Extract(rec, req)
	return rec
}

func TestExtract_ReturnsMemory(t *testing.T) {
	gw := &fakeGateway{text: `{"content":"I still smell rain on hot asphalt","emotional_tone":"nostalgic"}`}
	h := newHandler(t, gw)

	rec := post(h, `{"messageContent":"I still smell rain on hot asphalt, every summer"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"memory":{"content":"I still smell rain on hot asphalt","emotional_tone":"nostalgic"}}`, rec.Body.String())
	assert.True(t, gw.last.Params.JSONMode)
	assert.Equal(t, 250, gw.last.Params.MaxTokens)
}

func TestExtract_MissingToneIsNull(t *testing.T) {
	gw := &fakeGateway{text: `{"content":"we danced in the kitchen"}`}
	rec := post(newHandler(t, gw), `{"messageContent":"we danced in the kitchen"}`)
	assert.JSONEq(t, `{"memory":{"content":"we danced in the kitchen","emotional_tone":null}}`, rec.Body.String())
}

func TestExtract_NullMemoryCases(t *testing.T) {
	tests := []struct {
		name string
		gw   *fakeGateway
		body string
	}{
		{"mundane", &fakeGateway{text: `{"content":null,"emotional_tone":null}`}, `{"messageContent":"ok"}`},
		{"rate limited", &fakeGateway{err: &gateway.Error{Category: gateway.CategoryRateLimited, HTTPStatus: 429}}, `{"messageContent":"hello"}`},
		{"payment required", &fakeGateway{err: &gateway.Error{Category: gateway.CategoryPaymentRequired, HTTPStatus: 402}}, `{"messageContent":"hello"}`},
		{"upstream", &fakeGateway{err: &gateway.Error{Category: gateway.CategoryUpstreamError, HTTPStatus: 500}}, `{"messageContent":"hello"}`},
		{"network", &fakeGateway{err: errors.New("connection reset")}, `{"messageContent":"hello"}`},
		{"unparseable output", &fakeGateway{text: "I think this is nostalgic"}, `{"messageContent":"hello"}`},
		{"malformed body", &fakeGateway{}, `{"messageContent":`},
		{"empty content", &fakeGateway{}, `{"messageContent":"  "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(newHandler(t, tt.gw), tt.body)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"memory":null}`, rec.Body.String())
		})
	}
}

func TestExtract_NoRepairCall(t *testing.T) {
	gw := &fakeGateway{text: "not json"}
	post(newHandler(t, gw), `{"messageContent":"hello"}`)
	assert.Equal(t, 1, gw.calls)
}

func TestExtract_SkipsGatewayForEmptyMessage(t *testing.T) {
	gw := &fakeGateway{}
	post(newHandler(t, gw), `{"messageContent":""}`)
	assert.Zero(t, gw.calls)
}

func TestSkipped_AnswersNullMemory(t *testing.T) {
	gw := &fakeGateway{}
	h := newHandler(t, gw)

	rec := httptest.NewRecorder()
	h.Skipped(rec, httptest.NewRequest(http.MethodPost, "/functions/v1/extract-memory", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"memory":null}`, rec.Body.String())
	assert.Zero(t, gw.calls)
}
