package growatt

import (
	"context"
	"fmt"
	"time"
)

// ListPlants returns the plants of the session's account in upstream order.
func (c *Client) ListPlants(ctx context.Context, sess *Session) ([]Plant, error) {
	const op = EndpointPlantList

	doc, err := c.Invoke(ctx, sess, op, Params{})
	if err != nil {
		return nil, err
	}

	// Either a bare array or {"data": [...]}
	records := doc
	if doc.Kind() == KindObject {
		records = doc.Get("data")
	}
	if records.Kind() != KindArray {
		return nil, newError(ErrMalformedResponse, op, fmt.Sprintf("expected a list of plants, got %s", records.Kind()))
	}
	if records.Len() == 0 {
		return nil, newError(ErrEmptyResult, op, "account has no plants")
	}

	plants := make([]Plant, 0, records.Len())
	for i, record := range records.Items() {
		id := record.Get("plantId").Str()
		if id == "" {
			return nil, newError(ErrMalformedResponse, op, fmt.Sprintf("plant record %d has no plantId", i))
		}
		plants = append(plants, Plant{
			ID:     id,
			Name:   record.Get("plantName").Str(),
			Record: record,
		})
	}

	c.logger.Debug().Int("count", len(plants)).Msg("Retrieved plants from Growatt")
	return plants, nil
}

// ResolvePlant picks the plant to work on: the first one when plantID is empty,
// otherwise the one with that id.
func (c *Client) ResolvePlant(ctx context.Context, sess *Session, plantID string) (Plant, error) {
	plants, err := c.ListPlants(ctx, sess)
	if err != nil {
		return Plant{}, err
	}
	if plantID == "" {
		return plants[0], nil
	}
	for _, plant := range plants {
		if plant.ID == plantID {
			return plant, nil
		}
	}
	return Plant{}, newError(ErrEmptyResult, EndpointPlantList, fmt.Sprintf("plant %s not found", plantID))
}

// FetchPlantDetail returns plant energy data for the given timespan and date.
func (c *Client) FetchPlantDetail(ctx context.Context, sess *Session, plantID string, timespan Timespan, date time.Time) (Value, error) {
	return c.Invoke(ctx, sess, EndpointPlantDetail, Params{PlantID: plantID, Timespan: timespan, Date: date})
}

// FetchInverterDetail returns the detail record of an inverter.
func (c *Client) FetchInverterDetail(ctx context.Context, sess *Session, serial string) (Value, error) {
	return c.Invoke(ctx, sess, EndpointInverterDetail, Params{DeviceSN: serial})
}

// FetchMixDetail returns the mix info record, which carries the battery SoC.
// plantID may be empty.
func (c *Client) FetchMixDetail(ctx context.Context, sess *Session, mixSN, plantID string) (Value, error) {
	return c.Invoke(ctx, sess, EndpointMixInfo, Params{MixSN: mixSN, PlantID: plantID})
}

// FetchMixStatus returns the instantaneous power flows of a mix device.
func (c *Client) FetchMixStatus(ctx context.Context, sess *Session, mixSN, plantID string) (Value, error) {
	return c.Invoke(ctx, sess, EndpointMixStatus, Params{MixSN: mixSN, PlantID: plantID})
}

// FetchMixTotals returns the energy overview (today and lifetime totals) of a mix device.
func (c *Client) FetchMixTotals(ctx context.Context, sess *Session, mixSN, plantID string) (Value, error) {
	return c.Invoke(ctx, sess, EndpointMixTotals, Params{MixSN: mixSN, PlantID: plantID})
}

// FetchDashboard returns the plant's energy storage statistics.
func (c *Client) FetchDashboard(ctx context.Context, sess *Session, plantID string, timespan Timespan, date time.Time) (Value, error) {
	return c.Invoke(ctx, sess, EndpointDashboard, Params{PlantID: plantID, Timespan: timespan, Date: date})
}

// FetchChart returns production and consumption chart data of a mix device.
// The points are under the "chartData" member, keyed by time.
func (c *Client) FetchChart(ctx context.Context, sess *Session, mixSN, plantID string, timespan Timespan, date time.Time) (Value, error) {
	return c.Invoke(ctx, sess, EndpointMixChart, Params{MixSN: mixSN, PlantID: plantID, Timespan: timespan, Date: date})
}

// DeviceList returns the devices registered on a plant.
func (c *Client) DeviceList(ctx context.Context, sess *Session, plantID string) (Value, error) {
	info, err := c.Invoke(ctx, sess, EndpointPlantInfo, Params{PlantID: plantID})
	if err != nil {
		return Value{}, err
	}
	devices := info.Get("deviceList")
	if devices.Kind() != KindArray {
		return Value{}, newError(ErrMalformedResponse, EndpointPlantInfo, "response has no deviceList")
	}
	return devices, nil
}
