package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/flight-cargo-summary/internal/model"
)

// Supported dataset sources.
const (
	SourceFile  = "file"
	SourceMySQL = "mysql"
)

// LoadOptions selects where the dataset comes from.  FlightPath and
// CargoPath are used by the file source, DB by the mysql source.
type LoadOptions struct {
	Source     string
	FlightPath string
	CargoPath  string
	DB         *sql.DB
}

// Load builds the flight dataset from the configured source.
func Load(ctx context.Context, opts LoadOptions) ([]model.Flight, LoadStats, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Source)) {
	case "", SourceFile:
		return LoadFlightsFile(opts.FlightPath, opts.CargoPath)
	case SourceMySQL:
		if opts.DB == nil {
			return nil, LoadStats{}, fmt.Errorf("mysql source: no database handle")
		}
		return LoadFlightsMySQL(ctx, opts.DB)
	default:
		return nil, LoadStats{}, fmt.Errorf("%w: %q", ErrUnknownDataSource, opts.Source)
	}
}
