package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"gradebot/config"
	"gradebot/db"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newActivityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Inspect the activity log",
	}
	cmd.AddCommand(newSessionsCmd(), newListCmd(), newHourlyCmd())
	return cmd
}

// openActivity connects with the same configuration the server uses.
func openActivity(cmd *cobra.Command) (*db.Activity, func(), error) {
	cfg, err := config.Load(cmd.Flag("config").Value.String())
	if err != nil {
		return nil, nil, err
	}

	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	log.SetLevel(logrus.WarnLevel)

	gdb, err := db.Connect(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return db.NewActivity(gdb), func() { gdb.Close() }, nil
}

func newTable(w io.Writer, headers ...string) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		Behavior: tw.Behavior{TrimSpace: tw.On},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{Left: tw.On, Top: tw.Off, Right: tw.On, Bottom: tw.Off},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

func newSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List session ids (ALL first)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, done, err := openActivity(cmd)
			if err != nil {
				return err
			}
			defer done()

			ids, err := a.SessionIDs()
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	var (
		session string
		opts    db.ListOptions
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print activity, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, done, err := openActivity(cmd)
			if err != nil {
				return err
			}
			defer done()

			rows, err := a.ListActivity(session, opts)
			if err != nil {
				return err
			}
			return renderRows(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().StringVar(&session, "session", db.AllSessions, "session id, or ALL")
	cmd.Flags().IntVar(&opts.Limit, "limit", 50, "maximum rows (0 = no limit)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "rows to skip")
	cmd.Flags().BoolVar(&opts.Full, "full", false, "do not truncate details")
	return cmd
}

func renderRows(w io.Writer, rows []db.ActivityRow) error {
	table := newTable(w, "ID", "Timestamp", "Session", "Assignment", "Who", "Detail")
	for _, r := range rows {
		_ = table.Append([]string{
			strconv.FormatInt(r.ID, 10),
			r.Ts.UTC().Format(time.DateTime),
			r.Session,
			r.Assignment,
			r.Who,
			r.Detail,
		})
	}
	return table.Render()
}

func newHourlyCmd() *cobra.Command {
	var session string

	cmd := &cobra.Command{
		Use:   "hourly",
		Short: "Print events per session per hour",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, done, err := openActivity(cmd)
			if err != nil {
				return err
			}
			defer done()

			buckets, err := a.HourlyCounts(session)
			if err != nil {
				return err
			}
			return renderHourly(cmd.OutOrStdout(), buckets)
		},
	}
	cmd.Flags().StringVar(&session, "session", db.AllSessions, "session id, or ALL")
	return cmd
}

func renderHourly(w io.Writer, buckets []db.HourlyCount) error {
	table := newTable(w, "Session", "Hour", "Entries")
	for _, b := range buckets {
		_ = table.Append([]string{b.Session, b.Hour.UTC().Format("2006-01-02 15:00"), strconv.FormatInt(b.Count, 10)})
	}
	return table.Render()
}
