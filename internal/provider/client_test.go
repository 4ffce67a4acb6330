package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const brisbaneProps = `{
  "backend_name": "ibm_brisbane",
  "last_update_date": "2024-05-01T07:31:44+00:00",
  "qubits": [
    [
      {"date": "2024-05-01T06:00:00+00:00", "name": "T1", "unit": "us", "value": 231.5},
      {"name": "T2", "unit": "us", "value": 140.25},
      {"name": "frequency", "unit": "GHz", "value": 4.72},
      {"name": "readout_error", "unit": "", "value": 0.0123}
    ],
    [
      {"name": "T1", "unit": "us", "value": 198.0},
      {"name": "readout_error", "unit": "", "value": 0.02}
    ]
  ],
  "gates": [
    {"gate": "ecr", "qubits": [0, 1], "parameters": [
      {"name": "gate_error", "unit": "", "value": 0.0071},
      {"name": "gate_length", "unit": "ns", "value": 660}
    ]},
    {"gate": "sx", "qubits": [0], "parameters": [{"name": "gate_error", "value": 0.0002}]}
  ]
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	SetLogOutput(io.Discard)
	c, err := Dial(WithToken("tok"), WithAPIURL(srv.URL), WithInstance("crn:test"))
	require.NoError(t, err)
	return srv, c
}

func TestDialRequiresToken(t *testing.T) {
	_, err := Dial()
	assert.ErrorIs(t, err, ErrMissingCredentials)
	_, err = Dial(WithToken("   "))
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestClientEndpoints(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "crn:test", r.Header.Get("Service-CRN"))
		switch r.URL.Path {
		case "/backends":
			io.WriteString(w, `{"devices": ["ibm_brisbane", "ibm_sim"]}`)
		case "/backends/ibm_brisbane/status":
			io.WriteString(w, `{"state": true, "status": "active", "length_queue": 12}`)
		case "/backends/ibm_brisbane/configuration":
			io.WriteString(w, `{"backend_name": "ibm_brisbane", "n_qubits": 2, "coupling_map": [[0,1],[1,0]]}`)
		case "/backends/ibm_brisbane/properties":
			io.WriteString(w, brisbaneProps)
		case "/backends/ibm_sim/properties":
			io.WriteString(w, `{}`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	names, err := c.Backends(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ibm_brisbane", "ibm_sim"}, names)

	st, err := c.Status(ctx, "ibm_brisbane")
	require.NoError(t, err)
	assert.True(t, st.Operational)
	assert.Equal(t, 12, st.PendingJobs)
	assert.Equal(t, "ibm_brisbane", st.BackendName)

	cfg, err := c.Configuration(ctx, "ibm_brisbane")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.NumQubits)
	assert.Equal(t, [][2]int{{0, 1}, {1, 0}}, cfg.CouplingMap)

	props, err := c.Properties(ctx, "ibm_brisbane")
	require.NoError(t, err)
	require.NotNil(t, props)
	assert.Equal(t, 2, props.NumQubits())

	none, err := c.Properties(ctx, "ibm_sim")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestPropertiesAccessors(t *testing.T) {
	var p Properties
	require.NoError(t, json.Unmarshal([]byte(brisbaneProps), &p))

	t1, err := p.T1(0)
	require.NoError(t, err)
	assert.InDelta(t, 231.5e-6, t1, 1e-12)

	freq, err := p.Frequency(0)
	require.NoError(t, err)
	assert.InDelta(t, 4.72e9, freq, 1)

	ro, err := p.ReadoutError(1)
	require.NoError(t, err)
	assert.InDelta(t, 0.02, ro, 1e-12)

	_, err = p.T2(1)
	assert.ErrorIs(t, err, ErrPropertyMissing)
	_, err = p.T1(5)
	assert.ErrorIs(t, err, ErrPropertyMissing)

	ge, err := p.GateError("ecr", []int{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0071, ge, 1e-12)

	gl, err := p.GateLength("ecr", []int{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 660e-9, gl, 1e-15)

	_, err = p.GateLength("sx", []int{0})
	assert.ErrorIs(t, err, ErrPropertyMissing)
	_, err = p.GateError("ecr", []int{1, 0})
	assert.ErrorIs(t, err, ErrPropertyMissing)

	assert.Len(t, p.GatesNamed("cx", "ecr"), 1)

	ts, err := p.LastUpdate()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 7, 31, 44, 0, time.UTC), ts.UTC())

	bad := Properties{Qubits: [][]Nduv{{{Name: "T1", Unit: "fortnights", Value: 1}}}}
	_, err = bad.T1(0)
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestAPIErrorCarriesServerMessage(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"errors": [{"message": "Backend ibmq_old has been Retired", "code": 1234}]}`)
	})

	_, err := c.Status(context.Background(), "ibmq_old")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "backends/ibmq_old/status", apiErr.Path)
	assert.True(t, IsRetired(err))
	assert.False(t, IsRetired(errors.New("timeout")))
	assert.False(t, IsRetired(nil))
}

func TestRetriesOnlyServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, `{"devices": ["a"]}`)
	}))
	defer srv.Close()
	SetLogOutput(io.Discard)

	c, err := Dial(WithToken("t"), WithAPIURL(srv.URL), WithRetries(3, time.Millisecond))
	require.NoError(t, err)
	names, err := c.Backends(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names)
	assert.EqualValues(t, 3, calls.Load())

	calls.Store(0)
	single, err := Dial(WithToken("t"), WithAPIURL(srv.URL))
	require.NoError(t, err)
	_, err = single.Backends(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.EqualValues(t, 1, calls.Load())
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "forbidden", http.StatusForbidden)
	})
	c.opts.retries = 4

	_, err := c.Backends(context.Background())
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
	assert.Contains(t, err.Error(), "forbidden")
}
