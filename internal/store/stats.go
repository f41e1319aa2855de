package store

import (
	"context"
	"fmt"

	"github.com/roach88/sortviz/internal/ir"
)

// AlgorithmStats aggregates completed runs of one algorithm.
type AlgorithmStats struct {
	Algorithm      ir.Algorithm
	Runs           int
	Cancelled      int
	Faulted        int
	AvgComparisons float64
	AvgSwaps       float64
	AvgSize        float64
}

// Stats returns per-algorithm aggregates in algorithm order. Averages cover
// completed runs only; cancelled and faulted runs are counted separately.
func (s *Store) Stats(ctx context.Context) ([]AlgorithmStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT algorithm,
		       SUM(CASE WHEN outcome = 'completed' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN outcome = 'cancelled' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN outcome = 'faulted' THEN 1 ELSE 0 END),
		       COALESCE(AVG(CASE WHEN outcome = 'completed' THEN comparisons END), 0),
		       COALESCE(AVG(CASE WHEN outcome = 'completed' THEN swaps END), 0),
		       COALESCE(AVG(CASE WHEN outcome = 'completed' THEN size END), 0)
		FROM runs
		GROUP BY algorithm
	`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	byAlg := make(map[ir.Algorithm]AlgorithmStats)
	for rows.Next() {
		var (
			st   AlgorithmStats
			name string
		)
		if err := rows.Scan(&name, &st.Runs, &st.Cancelled, &st.Faulted,
			&st.AvgComparisons, &st.AvgSwaps, &st.AvgSize); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		if st.Algorithm, err = ir.ParseAlgorithm(name); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		byAlg[st.Algorithm] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}

	stats := []AlgorithmStats{}
	for _, a := range ir.Algorithms() {
		if st, ok := byAlg[a]; ok {
			stats = append(stats, st)
		}
	}
	return stats, nil
}
