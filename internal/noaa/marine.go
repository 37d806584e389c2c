package noaa

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ngmaloney/bite-forecast/internal/external"
	"github.com/ngmaloney/bite-forecast/internal/geo"
	"github.com/ngmaloney/bite-forecast/internal/models"
)

// NearbyStation is a station with its distance from the query point
type NearbyStation struct {
	Station
	DistanceKm float64
}

// MarineAdapter finds the nearest CO-OPS station to a point and reads its
// tide predictions and latest wave, wind and water temperature samples.
type MarineAdapter struct {
	stations StationSource
	products ProductSource
	tides    *TideClient
	cache    *ProductCache
	logger   *slog.Logger
}

// NewMarineAdapter wires the adapter. The cache is shared across calls so a
// station's product support is looked up once.
func NewMarineAdapter(stations StationSource, products ProductSource, tides *TideClient, cache *ProductCache, logger *slog.Logger) *MarineAdapter {
	if cache == nil {
		cache = NewProductCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MarineAdapter{
		stations: stations,
		products: products,
		tides:    tides,
		cache:    cache,
		logger:   logger,
	}
}

// FindNearestStation widens a bounding box around the point for each station
// type in priority order. The first non-empty result wins and its nearest
// member is returned. A nil station means nothing was found.
func (a *MarineAdapter) FindNearestStation(ctx context.Context, lat, lon float64) (*NearbyStation, error) {
	for _, stationType := range StationTypes {
		for _, delta := range SearchDeltas {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			found, err := a.stations.Search(ctx, stationType, geo.BoxAround(lat, lon, delta))
			if err != nil {
				a.logger.DebugContext(ctx, "station search failed", "type", stationType, "delta", delta, "error", err)
				continue
			}
			if len(found) == 0 {
				continue
			}

			nearby := make([]NearbyStation, 0, len(found))
			for _, st := range found {
				nearby = append(nearby, NearbyStation{
					Station:    st,
					DistanceKm: geo.HaversineKm(lat, lon, st.Lat, st.Lon),
				})
			}
			sort.SliceStable(nearby, func(i, j int) bool {
				return nearby[i].DistanceKm < nearby[j].DistanceKm
			})
			return &nearby[0], nil
		}
	}
	return nil, nil
}

// ensureProducts loads the product set for a station on first use.
// A failed lookup is remembered as predictions-only.
func (a *MarineAdapter) ensureProducts(ctx context.Context, stationID string) {
	if _, ok := a.cache.Known(stationID); ok {
		return
	}
	products, err := a.products.StationProducts(ctx, stationID)
	if err != nil {
		a.logger.DebugContext(ctx, "station product lookup failed", "station", stationID, "error", err)
		products = map[string]bool{predictionsProduct: true}
	}
	a.cache.SetKnown(stationID, products)
}

// Fetch returns station marine data for a day, or nil when no station is
// nearby or the station had nothing usable. Individual product failures
// are absorbed.
func (a *MarineAdapter) Fetch(ctx context.Context, in models.DayInputs) (*models.MarineObservation, error) {
	dayStart, err := in.DayStart()
	if err != nil {
		return nil, err
	}

	station, err := a.FindNearestStation(ctx, in.Lat, in.Lon)
	if err != nil || station == nil {
		return nil, err
	}
	a.ensureProducts(ctx, station.ID)

	var (
		g         errgroup.Group
		tides     []models.TideEvent
		wave      *NumericSample
		waterTemp *NumericSample
		wind      *WindSample
	)

	if a.cache.ShouldAttempt(station.ID, predictionsProduct) {
		g.Go(func() error {
			events, err := a.tides.GetTidePredictions(ctx, station.ID, dayStart)
			a.productFailed(ctx, station.ID, predictionsProduct, err)
			tides = events
			return nil
		})
	}
	if a.cache.ShouldAttempt(station.ID, waveHeightProduct) {
		g.Go(func() error {
			s, err := a.tides.GetLatestSample(ctx, station.ID, waveHeightProduct, "wh")
			a.productFailed(ctx, station.ID, waveHeightProduct, err)
			wave = s
			return nil
		})
	}
	if a.cache.ShouldAttempt(station.ID, windProduct) {
		g.Go(func() error {
			s, err := a.tides.GetLatestWind(ctx, station.ID)
			a.productFailed(ctx, station.ID, windProduct, err)
			wind = s
			return nil
		})
	}
	if a.cache.ShouldAttempt(station.ID, waterTemperatureProduct) {
		g.Go(func() error {
			s, err := a.tides.GetLatestSample(ctx, station.ID, waterTemperatureProduct, "v")
			a.productFailed(ctx, station.ID, waterTemperatureProduct, err)
			waterTemp = s
			return nil
		})
	}
	_ = g.Wait()

	m := &models.MarineObservation{
		StationID:         station.ID,
		StationName:       station.Name,
		StationDistanceKm: models.Float64(math.Round(station.DistanceKm*10) / 10),
	}
	if len(tides) > 0 {
		m.TideEvents = tides
	}
	if wave != nil {
		m.WaveHeightM = models.Float64(wave.Value)
	}
	if waterTemp != nil {
		m.WaterTempC = models.Float64(waterTemp.Value)
	}
	if wind != nil {
		m.WindSpeedKph = models.Float64(wind.SpeedKph)
		m.WindDirectionDeg = wind.DirectionDeg
		m.WindDirectionText = wind.DirectionText
	}

	if !m.HasData() {
		return nil, nil
	}
	return m, nil
}

func (a *MarineAdapter) productFailed(ctx context.Context, stationID, product string, err error) {
	if err == nil {
		return
	}
	if external.IsStatus(err, http.StatusBadRequest, http.StatusNotFound) {
		a.cache.MarkUnsupported(stationID, product)
	}
	a.logger.DebugContext(ctx, "station product unavailable", "station", stationID, "product", product, "error", err)
}
