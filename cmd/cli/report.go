package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/akeren/trustlink-waitlist/domain/waitlist"
	"github.com/akeren/trustlink-waitlist/internal/log"
	"github.com/akeren/trustlink-waitlist/pkg/constants"
	"github.com/olekukonko/tablewriter"
	"gorm.io/gorm"
)

const reportTimeout = time.Minute

func newService(logger *log.Logger, db *gorm.DB) waitlist.WaitlistService {
	repository := waitlist.NewWaitlistRepository(db, waitlist.RepositoryConfig{
		QueryTimeout: constants.DefaultStoreQueryTimeout,
	})
	return waitlist.NewWaitlistService(logger, repository, nil)
}

func printStats(w io.Writer, logger *log.Logger, db *gorm.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	stats, err := newService(logger, db).Stats(ctx)
	if err != nil {
		return err
	}

	return renderStats(w, stats)
}

func renderStats(w io.Writer, stats *waitlist.StatsResponse) error {
	table := tablewriter.NewWriter(w)
	table.Header("Section", "Key", "Count")

	var rows [][]string
	for _, row := range stats.ByActorType {
		rows = append(rows, []string{"actor_type", row.ActorType, strconv.FormatInt(row.Count, 10)})
	}
	for _, row := range stats.TopCities {
		rows = append(rows, []string{"city", row.City, strconv.FormatInt(row.Count, 10)})
	}
	rows = append(rows, []string{"total", "", strconv.FormatInt(stats.Total, 10)})

	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("append stats row: %w", err)
		}
	}

	return table.Render()
}

func writeExport(w io.Writer, logger *log.Logger, db *gorm.DB, actorType string) error {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	file, err := newService(logger, db).Export(ctx, actorType)
	if err != nil {
		return err
	}

	if _, err := w.Write(file.Content); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
