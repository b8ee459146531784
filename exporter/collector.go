package exporter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/s0up4200/mixwatch/growatt"
)

const scrapeTimeout = time.Minute

// Target identifies the account and the mix device to export
type Target struct {
	Username       string
	Password       string
	PasswordHashed bool
	MixSerial      string
	// PlantID may be empty; the first plant of the account is used then
	PlantID string
}

type snapshot struct {
	plantID   string
	status    growatt.Value
	info      growatt.Value
	dashboard growatt.Value
}

// gauge maps one upstream field onto a metric
type gauge struct {
	desc   *prometheus.Desc
	source func(s *snapshot) growatt.Value
}

// Collector implements prometheus.Collector for one Growatt mix device
type Collector struct {
	client growatt.API
	target Target
	logger zerolog.Logger
	now    func() time.Time

	gauges        []gauge
	scrapeSuccess *prometheus.Desc

	// mu serialises scrapes; the client must not be used concurrently
	mu      sync.Mutex
	plantID string
}

// NewCollector creates a new Growatt mix collector
func NewCollector(client growatt.API, target Target, logger zerolog.Logger) *Collector {
	labels := []string{"plant_id", "mix_serial"}
	newDesc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(name, help, labels, nil)
	}
	statusField := func(key string) func(s *snapshot) growatt.Value {
		return func(s *snapshot) growatt.Value { return s.status.Get(key) }
	}
	dashboardField := func(key string) func(s *snapshot) growatt.Value {
		return func(s *snapshot) growatt.Value { return s.dashboard.Get(key) }
	}

	return &Collector{
		client:  client,
		target:  target,
		logger:  logger,
		now:     time.Now,
		plantID: target.PlantID,
		gauges: []gauge{
			{newDesc("mixwatch_pv_power_watts", "Current PV power"), statusField("ppv")},
			{newDesc("mixwatch_grid_import_watts", "Current power drawn from the grid"), statusField("pactouser")},
			{newDesc("mixwatch_local_load_watts", "Current house consumption"), statusField("pLocalLoad")},
			{newDesc("mixwatch_battery_discharge_watts", "Current battery discharge power"), statusField("pdisCharge1")},
			{
				newDesc("mixwatch_battery_soc_percent", "Battery state of charge in percent"),
				func(s *snapshot) growatt.Value { return s.info.Get("soc") },
			},
			{newDesc("mixwatch_local_load_energy_today_kwh", "House consumption today"), dashboardField("elocalLoad")},
			{newDesc("mixwatch_battery_charge_energy_today_kwh", "Battery charge energy today"), dashboardField("eChargeToday1")},
			{newDesc("mixwatch_grid_import_energy_today_kwh", "Energy drawn from the grid today"), dashboardField("etouser")},
		},
		scrapeSuccess: prometheus.NewDesc(
			"mixwatch_scrape_success",
			"Whether scraping the Growatt API was successful",
			[]string{"mix_serial"},
			nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, g := range c.gauges {
		ch <- g.desc
	}
	ch <- c.scrapeSuccess
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
	defer cancel()

	snap, err := c.scrape(ctx)
	if errors.Is(err, growatt.ErrSessionExpired) {
		c.logger.Info().Str("mix_serial", c.target.MixSerial).Msg("Growatt session expired, logging in again")
		snap, err = c.scrape(ctx)
	}
	if err != nil {
		c.logger.Error().Err(err).Str("mix_serial", c.target.MixSerial).Msg("Error scraping Growatt")
		ch <- prometheus.MustNewConstMetric(c.scrapeSuccess, prometheus.GaugeValue, 0, c.target.MixSerial)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.scrapeSuccess, prometheus.GaugeValue, 1, c.target.MixSerial)

	for _, g := range c.gauges {
		value, ok := g.source(snap).Float()
		if !ok {
			// Upstream omits fields depending on firmware
			continue
		}
		ch <- prometheus.MustNewConstMetric(g.desc, prometheus.GaugeValue, value, snap.plantID, c.target.MixSerial)
	}
}

// scrape fetches everything one collection needs, logging in first when required
func (c *Collector) scrape(ctx context.Context) (*snapshot, error) {
	sess := c.client.Session()
	if sess == nil {
		var err error
		sess, err = c.login(ctx)
		if err != nil {
			return nil, err
		}
	}

	if c.plantID == "" {
		plant, err := c.client.ResolvePlant(ctx, sess, "")
		if err != nil {
			return nil, fmt.Errorf("resolve plant: %w", err)
		}
		c.plantID = plant.ID
		c.logger.Info().Str("plant_id", plant.ID).Str("plant_name", plant.Name).Msg("Using first plant of the account")
	}

	snap := &snapshot{plantID: c.plantID}
	var err error

	if snap.status, err = c.client.FetchMixStatus(ctx, sess, c.target.MixSerial, c.plantID); err != nil {
		return nil, fmt.Errorf("mix status: %w", err)
	}
	if snap.info, err = c.client.FetchMixDetail(ctx, sess, c.target.MixSerial, c.plantID); err != nil {
		return nil, fmt.Errorf("mix detail: %w", err)
	}
	if snap.dashboard, err = c.client.FetchDashboard(ctx, sess, c.plantID, growatt.TimespanHour, c.now()); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	return snap, nil
}

func (c *Collector) login(ctx context.Context) (*growatt.Session, error) {
	if c.target.PasswordHashed {
		return c.client.LoginHashed(ctx, c.target.Username, c.target.Password)
	}
	return c.client.Login(ctx, c.target.Username, c.target.Password)
}
