package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/andresfortunato/mexico-city-growth-tool/internal/errors"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/shared/testutil"
)

type windowQuery struct {
	Start int    `query:"start" validate:"year"`
	End   int    `query:"end" validate:"year,gtefield=Start"`
	City  string `json:"city" validate:"omitempty,max=8"`
}

func TestValidator_ValidateStruct(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name       string
		input      windowQuery
		wantFields []string
		wantMsgs   []string
	}{
		{
			name:  "valid window",
			input: windowQuery{Start: 2015, End: 2020},
		},
		{
			name:  "single year window",
			input: windowQuery{Start: 2018, End: 2018},
		},
		{
			name:       "end before start",
			input:      windowQuery{Start: 2020, End: 2015},
			wantFields: []string{"end"},
			wantMsgs:   []string{"end must not be before start"},
		},
		{
			name:       "out of range year",
			input:      windowQuery{Start: 1800, End: 2015},
			wantFields: []string{"start"},
			wantMsgs:   []string{"start must be a year between 1990 and 2100"},
		},
		{
			name:       "json field name",
			input:      windowQuery{Start: 2015, End: 2016, City: "Aguascalientes"},
			wantFields: []string{"city"},
			wantMsgs:   []string{"city must be at most 8"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.input)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)
			require.Len(t, details.Errors, len(tt.wantFields))
			for i, fe := range details.Errors {
				assert.Equal(t, tt.wantFields[i], fe.Field)
				assert.Equal(t, tt.wantMsgs[i], fe.Message)
			}
		})
	}
}

func TestQueryParamValidator_ValidateInt(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewQueryParamValidator(logger, apierrors.NewErrorHandler(logger, false))

	tests := []struct {
		name     string
		query    string
		want     int
		wantOK   bool
		wantCode int
	}{
		{name: "absent uses default", query: "", want: 2015, wantOK: true, wantCode: http.StatusOK},
		{name: "valid", query: "?start=2012", want: 2012, wantOK: true, wantCode: http.StatusOK},
		{name: "not a number", query: "?start=abc", wantOK: false, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			got, ok := v.ValidateInt(rec, httptest.NewRequest(http.MethodGet, "/api/cagr"+tt.query, nil), "start", 2015)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
