package assist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donovanp007/medscribe/pkg/errors"
)

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient("")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestClassify_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/classify", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req classifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Patient reports chest pain", req.Sentence)
		assert.Equal(t, []string{"symptoms", "plan"}, req.Candidates)

		json.NewEncoder(w).Encode(classifyResponse{SectionID: "symptoms", Confidence: 0.92})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithAPIKey("secret"))
	require.NoError(t, err)

	sectionID, confidence, err := c.Classify(context.Background(), "Patient reports chest pain", []string{"symptoms", "plan"})
	require.NoError(t, err)
	assert.Equal(t, "symptoms", sectionID)
	assert.InDelta(t, 0.92, confidence, 1e-9)
}

func TestClassify_DeclinedAssignment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(classifyResponse{SectionID: "", Confidence: 0})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	sectionID, _, err := c.Classify(context.Background(), "hmm", []string{"symptoms"})
	require.NoError(t, err)
	assert.Empty(t, sectionID)
}

func TestClassify_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, _, err = c.Classify(context.Background(), "x", []string{"symptoms"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAssistInferenceFailed))
}

func TestClassify_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, _, err = c.Classify(context.Background(), "x", []string{"symptoms"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAssistResponseInvalid))
}

func TestClassify_ConfidenceOutOfRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(classifyResponse{SectionID: "symptoms", Confidence: 1.5})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, _, err = c.Classify(context.Background(), "x", []string{"symptoms"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAssistResponseInvalid))
}

func TestClassify_SectionOutsideCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(classifyResponse{SectionID: "billing", Confidence: 0.9})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, _, err = c.Classify(context.Background(), "x", []string{"symptoms"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAssistResponseInvalid))
}

func TestClassify_ServiceDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, _, err = c.Classify(context.Background(), "x", []string{"symptoms"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAssistUnavailable))
}

func TestHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	assert.NoError(t, c.Healthy(context.Background()))
}
