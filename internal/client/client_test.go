package client

import (
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/medipredict/forecast-dashboard/internal/chart"
	"github.com/medipredict/forecast-dashboard/internal/pipeline"
	"github.com/medipredict/forecast-dashboard/internal/result"
	"github.com/medipredict/forecast-dashboard/pkg/constants"
	"github.com/medipredict/forecast-dashboard/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func requiredFiles() []pipeline.NamedFile {
	files := make([]pipeline.NamedFile, 0, len(pipeline.RequiredSlots))
	for _, s := range pipeline.RequiredSlots {
		files = append(files, pipeline.NamedFile{
			Slot: s,
			File: &pipeline.File{Name: string(s) + ".csv", Data: []byte("date,value\n2025-03-01,1\n")},
		})
	}
	return files
}

func TestBuildPayload(t *testing.T) {
	files := append(requiredFiles(), pipeline.NamedFile{Slot: pipeline.SlotEmergency})

	body, contentType, err := BuildPayload(files)
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	form, err := multipart.NewReader(body, params["boundary"]).ReadForm(1 << 20)
	require.NoError(t, err)

	assert.Len(t, form.File, 5)
	for _, s := range pipeline.RequiredSlots {
		headers := form.File[string(s)]
		require.Len(t, headers, 1, s)
		assert.Equal(t, string(s)+".csv", headers[0].Filename)
	}
	assert.NotContains(t, form.File, "emergency")
}

func TestProcessSuccess(t *testing.T) {
	backend := testutil.NewBackend(t, http.StatusOK, testutil.ScenarioA())
	c := New(backend.URL(), time.Second, zap.NewNop())

	res, err := c.Process(context.Background(), requiredFiles())
	require.NoError(t, err)

	assert.Equal(t, 1, backend.Calls())
	req := backend.LastRequest()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, constants.ProcessDataPath, req.Path)
	assert.Len(t, req.Files, 5)
	assert.Equal(t, "date,value\n2025-03-01,1\n", string(req.Contents["admissions"]))

	assert.Len(t, res.Admissions.Dates, 30)
	assert.InDelta(t, 4.2, res.LOS.Avg, 1e-9)
	assert.Nil(t, res.Emergency)
}

func TestProcessServerReportedError(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusBadRequest, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			backend := testutil.NewBackend(t, status, testutil.ErrorJSON("invalid csv headers"))
			c := New(backend.URL(), time.Second, nil)

			_, err := c.Process(context.Background(), requiredFiles())

			var serverErr *pipeline.ServerReportedError
			require.ErrorAs(t, err, &serverErr)
			assert.Equal(t, "invalid csv headers", serverErr.Message)
		})
	}
}

func TestProcessTransportErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		is     error
	}{
		{name: "html body", status: http.StatusOK, body: "<html>oops</html>", is: result.ErrNotJSON},
		{name: "json array", status: http.StatusOK, body: "[1,2]", is: result.ErrNotJSON},
		{name: "bad gateway", status: http.StatusBadGateway, body: "upstream down"},
		{name: "not found json", status: http.StatusNotFound, body: `{"detail":"not found"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := testutil.NewBackend(t, tt.status, tt.body)
			c := New(backend.URL(), time.Second, zap.NewNop())

			_, err := c.Process(context.Background(), requiredFiles())

			var transportErr *pipeline.TransportError
			require.ErrorAs(t, err, &transportErr)
			if tt.is != nil {
				assert.True(t, errors.Is(err, tt.is))
			}
			assert.Equal(t, 1, backend.Calls())
		})
	}
}

func TestProcessUnreachableBackend(t *testing.T) {
	backend := testutil.NewBackend(t, http.StatusOK, "{}")
	url := backend.URL()
	backend.Server.Close()

	_, err := New(url, time.Second, zap.NewNop()).Process(context.Background(), requiredFiles())

	var transportErr *pipeline.TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestNewDefaults(t *testing.T) {
	c := New("  http://backend:5000/ ", 0, nil)
	assert.Equal(t, "http://backend:5000/api/process-data", c.Endpoint())
	assert.Equal(t, constants.DefaultBackendTimeout, c.httpClient.Timeout)

	assert.Equal(t, constants.DefaultBackendURL+constants.ProcessDataPath, New("", time.Second, nil).Endpoint())
}

func TestClientDrivesPipeline(t *testing.T) {
	backend := testutil.NewBackend(t, http.StatusOK, testutil.ScenarioD())
	renderer := stubRenderer{}
	p := pipeline.New(New(backend.URL(), time.Second, nil), renderer, zap.NewNop())
	for _, f := range requiredFiles() {
		require.NoError(t, p.RecordFile(f.Slot, f.File))
	}
	require.NoError(t, p.RecordFile(pipeline.SlotDepartment, &pipeline.File{Name: "dept.csv", Data: []byte("x")}))

	require.NoError(t, p.Submit(context.Background()))

	assert.Equal(t, 1, backend.Calls())
	assert.Contains(t, backend.LastRequest().Files, "department")
	assert.NotContains(t, backend.LastRequest().Files, "emergency")
	assert.Len(t, p.Display().Sections, 6)
	assert.Equal(t, 5, p.HandleCount())
}

type stubRenderer struct{}

func (stubRenderer) Render(spec chart.Spec) (chart.Handle, error) {
	return chart.NewHandle(spec.ID, "image/png", nil), nil
}
