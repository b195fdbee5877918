package logistics

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"artisanal-futures/internal/domain/logistics"
	xerrors "artisanal-futures/internal/pkg/errors"
	"artisanal-futures/internal/storage"

	"go.uber.org/zap"
)

const archiveLinkTTL = 24 * time.Hour

var archiveHeader = []string{
	"path_id", "vehicle_id", "driver_name", "driver_email", "status",
	"distance", "duration", "stops", "created_at",
}

// ArchiveRoute exports a route's paths as CSV into object storage and
// returns a presigned download link.
func (s *LogisticsService) ArchiveRoute(ctx context.Context, actor Actor, routeID string) (*logistics.ArchiveResult, error) {
	if s.store == nil {
		return nil, fmt.Errorf("object storage not configured: %w", xerrors.ErrUpstream)
	}

	route, err := s.repo.FindRouteByID(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if _, err := s.CheckDepotAccess(ctx, actor, route.DepotID); err != nil {
		return nil, err
	}

	paths, err := s.repo.ListRoutePaths(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load route paths: %w", err)
	}

	data, err := s.routeCSV(ctx, paths)
	if err != nil {
		return nil, err
	}

	key := storage.RouteArchiveKey(route.DepotID, route.ID, time.Now())
	if err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "text/csv"); err != nil {
		return nil, fmt.Errorf("archive route: %w", err)
	}

	link, err := s.store.PresignGet(ctx, key, archiveLinkTTL)
	if err != nil {
		s.logger.Warn("archive uploaded without download link", zap.String("key", key), zap.Error(err))
	}

	s.logger.Info("route archived",
		zap.String("route_id", routeID),
		zap.String("key", key),
		zap.Int("paths", len(paths)),
	)

	return &logistics.ArchiveResult{RouteID: routeID, Key: key, Paths: len(paths), URL: link}, nil
}

func (s *LogisticsService) routeCSV(ctx context.Context, paths []logistics.OptimizedRoutePath) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(archiveHeader); err != nil {
		return nil, err
	}

	for _, p := range paths {
		var driverName, driverEmail string
		v, err := s.repo.FindVehicleByID(ctx, p.VehicleID)
		if err == nil && v.Driver != nil {
			driverName, driverEmail = v.Driver.Name, v.Driver.Email
		}

		record := []string{
			p.ID,
			p.VehicleID,
			driverName,
			driverEmail,
			string(p.Status),
			formatFloat(p.Distance),
			formatFloat(p.Duration),
			strconv.Itoa(countStops(p.Stops)),
			p.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write route csv: %w", err)
	}

	return buf.Bytes(), nil
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func countStops(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var stops []json.RawMessage
	if err := json.Unmarshal(raw, &stops); err != nil {
		return 0
	}
	return len(stops)
}
