package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/mixwatch/config"
	"github.com/s0up4200/mixwatch/filter"
	"github.com/s0up4200/mixwatch/growatt"
)

func value(t *testing.T, doc string) growatt.Value {
	t.Helper()
	v, err := growatt.ParseValue([]byte(doc))
	require.NoError(t, err)
	return v
}

func TestParseDate(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		input    string
		expected time.Time
		wantErr  bool
	}{
		{name: "empty is now", input: "", expected: now},
		{name: "day", input: "2026-03-04", expected: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)},
		{name: "month", input: "2026-03", expected: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "garbage", input: "04/03/2026", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.input, now)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "got %s", got)
		})
	}
}

func TestPrintStatus(t *testing.T) {
	chartFilter, err := filter.Compile(filter.DefaultExpression)
	require.NoError(t, err)
	entries, err := chartFilter.Apply(value(t, `{"chartData":{"00:05":{"sysOut":"0"},"12:00":{"sysOut":"1890"}}}`))
	require.NoError(t, err)

	report := statusReport{
		Plant:     growatt.Plant{ID: "30", Record: value(t, `{"plantId":"30","todayEnergy":"12.3 kWh"}`)},
		Chart:     entries,
		Status:    value(t, `{"ppv":"2140","pactouser":"0","pLocalLoad":"410","pdisCharge1":"15"}`),
		Info:      value(t, `{"soc":87}`),
		Dashboard: value(t, `{"elocalLoad":"9.4","eChargeToday1":"3.1","etouser":"1.2"}`),
	}

	var buf bytes.Buffer
	printStatus(&buf, filter.DefaultExpression, report)
	out := buf.String()

	assert.Contains(t, out, `Time: 12:00 Val: {"sysOut":"1890"}`)
	assert.NotContains(t, out, "00:05")
	assert.Contains(t, out, "PV Power           : 2140 W")
	assert.Contains(t, out, "From Battery       : 15 W")
	assert.Contains(t, out, "Battery Charge Level: 87%")
	assert.Contains(t, out, "Production Today    : 12.3 kWh")
	assert.Contains(t, out, "Grid Power Load Today : 1.2 kWh")
}

func TestPrintPlants(t *testing.T) {
	var buf bytes.Buffer
	printPlants(&buf, []growatt.Plant{
		{ID: "30", Name: "Roof", Record: value(t, `{"todayEnergy":"12.3 kWh","totalEnergy":"4.1 MWh"}`)},
	})

	assert.Contains(t, buf.String(), "ID")
	assert.Contains(t, buf.String(), "Roof")
	assert.Contains(t, buf.String(), "4.1 MWh")
}

func TestPrintEndpoints(t *testing.T) {
	var buf bytes.Buffer
	printEndpoints(&buf)

	assert.Contains(t, buf.String(), growatt.EndpointMixChart)
	assert.Contains(t, buf.String(), "newPlantDetailAPI.do")
}

func TestNeedsMixSerial(t *testing.T) {
	tests := []struct {
		endpoint string
		expected bool
	}{
		{endpoint: growatt.EndpointPlantList, expected: false},
		{endpoint: growatt.EndpointPlantDetail, expected: false},
		{endpoint: growatt.EndpointInverterDetail, expected: false},
		{endpoint: growatt.EndpointMixStatus, expected: true},
		{endpoint: growatt.EndpointMixInfo, expected: true},
		{endpoint: growatt.EndpointMixChart, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			ep, ok := growatt.LookupEndpoint(tt.endpoint)
			require.True(t, ok)
			assert.Equal(t, tt.expected, needsMixSerial(ep))
		})
	}
}

func TestRequireMixSerialHook(t *testing.T) {
	cfg = &config.Config{}
	t.Cleanup(func() { cfg = nil })

	for _, c := range []*cobra.Command{statusCmd, chartCmd, serveCmd} {
		require.NotNil(t, c.PreRunE, c.Name())
		assert.Error(t, c.PreRunE(c, nil), c.Name())
	}
	assert.Nil(t, plantsCmd.PreRunE)
	assert.Nil(t, loginCmd.PreRunE)

	cfg.Growatt.MixSerial = "MIX001"
	assert.NoError(t, statusCmd.PreRunE(statusCmd, nil))
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, value(t, `{"soc":87,"ppv":"2140"}`)))
	assert.Equal(t, "{\n  \"ppv\": \"2140\",\n  \"soc\": 87\n}\n", buf.String())
}
