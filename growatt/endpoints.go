package growatt

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"
)

// Field names the Params member (or session attribute) that fills a query key.
type Field int

const (
	FieldPlantID Field = iota
	FieldMixSN
	FieldDeviceSN
	FieldUserID
	FieldTimespan
	FieldDate
	// FieldOptionalPlantID is sent only when a plant id is given
	FieldOptionalPlantID
)

// Endpoint describes one resource of the mobile API.
type Endpoint struct {
	Name   string
	Method string
	Path   string
	// Fixed query parameters sent on every call
	Fixed url.Values
	// Fields maps query keys to the values they carry
	Fields map[string]Field
	// Envelope is the member unwrapped from the response when present
	Envelope string
}

const (
	envelopeBack = "back"
	envelopeObj  = "obj"
)

const (
	EndpointPlantList             = "plant_list"
	EndpointPlantListV2           = "plant_list_v2"
	EndpointPlantDetail           = "plant_detail"
	EndpointPlantInfo             = "plant_info"
	EndpointPlantSettings         = "plant_settings"
	EndpointInverterData          = "inverter_data"
	EndpointInverterDetail        = "inverter_detail"
	EndpointInverterDetailTwo     = "inverter_detail_two"
	EndpointTLXData               = "tlx_data"
	EndpointTLXDetail             = "tlx_detail"
	EndpointMixInfo               = "mix_info"
	EndpointMixStatus             = "mix_status"
	EndpointMixTotals             = "mix_totals"
	EndpointMixChart              = "mix_chart"
	EndpointDashboard             = "dashboard"
	EndpointStorageDetail         = "storage_detail"
	EndpointStorageParams         = "storage_params"
	EndpointStorageEnergyOverview = "storage_energy_overview"
)

var catalogue = map[string]Endpoint{
	EndpointPlantList: {
		Method:   http.MethodGet,
		Path:     "PlantListAPI.do",
		Fields:   map[string]Field{"userId": FieldUserID},
		Envelope: envelopeBack,
	},
	EndpointPlantListV2: {
		Method:   http.MethodGet,
		Path:     "newPlantListAPI.do",
		Fields:   map[string]Field{"userId": FieldUserID},
		Envelope: envelopeBack,
	},
	EndpointPlantDetail: {
		Method:   http.MethodGet,
		Path:     "newPlantDetailAPI.do",
		Fields:   map[string]Field{"plantId": FieldPlantID, "type": FieldTimespan, "date": FieldDate},
		Envelope: envelopeBack,
	},
	EndpointPlantInfo: {
		Method: http.MethodGet,
		Path:   "TwoPlantAPI.do",
		Fixed:  url.Values{"op": {"getAllDeviceList"}, "pageNum": {"1"}, "pageSize": {"1"}},
		Fields: map[string]Field{"plantId": FieldPlantID},
	},
	EndpointPlantSettings: {
		Method: http.MethodGet,
		Path:   "PlantAPI.do",
		Fixed:  url.Values{"op": {"getPlant"}},
		Fields: map[string]Field{"plantId": FieldPlantID},
	},
	EndpointInverterData: {
		Method: http.MethodGet,
		Path:   "newInverterAPI.do",
		Fixed:  url.Values{"op": {"getInverterData"}, "type": {"1"}},
		Fields: map[string]Field{"id": FieldDeviceSN, "date": FieldDate},
	},
	EndpointInverterDetail: {
		Method: http.MethodGet,
		Path:   "newInverterAPI.do",
		Fixed:  url.Values{"op": {"getInverterDetailData"}},
		Fields: map[string]Field{"inverterId": FieldDeviceSN},
	},
	EndpointInverterDetailTwo: {
		Method: http.MethodGet,
		Path:   "newInverterAPI.do",
		Fixed:  url.Values{"op": {"getInverterDetailData_two"}},
		Fields: map[string]Field{"inverterId": FieldDeviceSN},
	},
	EndpointTLXData: {
		Method: http.MethodGet,
		Path:   "TlxApi.do",
		Fixed:  url.Values{"op": {"getTlxData"}, "type": {"1"}},
		Fields: map[string]Field{"id": FieldDeviceSN, "date": FieldDate},
	},
	EndpointTLXDetail: {
		Method: http.MethodGet,
		Path:   "TlxApi.do",
		Fixed:  url.Values{"op": {"getTlxDetailData"}},
		Fields: map[string]Field{"id": FieldDeviceSN},
	},
	EndpointMixInfo: {
		Method:   http.MethodGet,
		Path:     "newMixApi.do",
		Fixed:    url.Values{"op": {"getMixInfo"}},
		Fields:   map[string]Field{"mixId": FieldMixSN, "plantId": FieldOptionalPlantID},
		Envelope: envelopeObj,
	},
	EndpointMixStatus: {
		Method:   http.MethodPost,
		Path:     "newMixApi.do",
		Fixed:    url.Values{"op": {"getSystemStatus_KW"}},
		Fields:   map[string]Field{"mixId": FieldMixSN, "plantId": FieldPlantID},
		Envelope: envelopeObj,
	},
	EndpointMixTotals: {
		Method:   http.MethodPost,
		Path:     "newMixApi.do",
		Fixed:    url.Values{"op": {"getEnergyOverview"}},
		Fields:   map[string]Field{"mixId": FieldMixSN, "plantId": FieldPlantID},
		Envelope: envelopeObj,
	},
	EndpointMixChart: {
		Method: http.MethodPost,
		Path:   "newMixApi.do",
		Fixed:  url.Values{"op": {"getEnergyProdAndCons_KW"}},
		Fields: map[string]Field{
			"mixId":   FieldMixSN,
			"plantId": FieldPlantID,
			"type":    FieldTimespan,
			"date":    FieldDate,
		},
		Envelope: envelopeObj,
	},
	EndpointDashboard: {
		Method: http.MethodPost,
		Path:   "newPlantAPI.do",
		Fixed:  url.Values{"action": {"getEnergyStorageData"}},
		Fields: map[string]Field{"plantId": FieldPlantID, "type": FieldTimespan, "date": FieldDate},
	},
	EndpointStorageDetail: {
		Method: http.MethodGet,
		Path:   "StorageAPI.do",
		Fixed:  url.Values{"op": {"getStorageInfo_sacolar"}},
		Fields: map[string]Field{"storageId": FieldDeviceSN},
	},
	EndpointStorageParams: {
		Method: http.MethodGet,
		Path:   "StorageAPI.do",
		Fixed:  url.Values{"op": {"getStorageParams_sacolar"}},
		Fields: map[string]Field{"storageId": FieldDeviceSN},
	},
	EndpointStorageEnergyOverview: {
		Method:   http.MethodPost,
		Path:     "StorageAPI.do",
		Fixed:    url.Values{"op": {"getEnergyOverviewData_sacolar"}},
		Fields:   map[string]Field{"plantId": FieldPlantID, "storageSn": FieldDeviceSN},
		Envelope: envelopeObj,
	},
}

// LookupEndpoint returns the catalogue entry registered under name.
func LookupEndpoint(name string) (Endpoint, bool) {
	ep, ok := catalogue[name]
	if !ok {
		return Endpoint{}, false
	}
	ep.Name = name
	return ep, true
}

// EndpointNames lists the catalogue in sorted order.
func EndpointNames() []string {
	names := make([]string, 0, len(catalogue))
	for name := range catalogue {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// query builds the query string for one call. Fixed values are copied, never shared.
func (e Endpoint) query(sess *Session, p Params, now time.Time) (url.Values, error) {
	q := url.Values{}
	for key, values := range e.Fixed {
		q[key] = append([]string(nil), values...)
	}

	_, chartStyle := e.fieldKey(FieldTimespan)
	for key, field := range e.Fields {
		switch field {
		case FieldPlantID:
			if p.PlantID == "" {
				return nil, fmt.Errorf("plant id is required")
			}
			q.Set(key, p.PlantID)
		case FieldOptionalPlantID:
			if p.PlantID != "" {
				q.Set(key, p.PlantID)
			}
		case FieldMixSN:
			if p.MixSN == "" {
				return nil, fmt.Errorf("mix serial number is required")
			}
			q.Set(key, p.MixSN)
		case FieldDeviceSN:
			if p.DeviceSN == "" {
				return nil, fmt.Errorf("device serial number is required")
			}
			q.Set(key, p.DeviceSN)
		case FieldUserID:
			q.Set(key, sess.UserID)
		case FieldTimespan:
			if !p.Timespan.Valid() {
				return nil, fmt.Errorf("unknown timespan %d", int(p.Timespan))
			}
			q.Set(key, strconv.Itoa(int(p.Timespan)))
		case FieldDate:
			date := p.Date
			if date.IsZero() {
				date = now
			}
			ts := TimespanDay
			if chartStyle {
				ts = p.Timespan
			}
			q.Set(key, ts.FormatDate(date))
		default:
			return nil, fmt.Errorf("unknown field %d for %s", int(field), key)
		}
	}
	return q, nil
}

func (e Endpoint) fieldKey(field Field) (string, bool) {
	for key, f := range e.Fields {
		if f == field {
			return key, true
		}
	}
	return "", false
}
