package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/table"

	"github.com/wcsocket/wcsocket-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Connections       map[string]*ConnectionStats
	Events            map[string]*EventStats
	Pings             int
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// ConnectionStats holds statistics for a single connection.
type ConnectionStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	BytesIn   int
	BytesOut  int
	CloseCode int
}

// EventStats holds per event name statistics.
type EventStats struct {
	Sent      int
	Received  int
	Responses int
	Failed    int
	RoundTrip time.Duration
}

// AverageRoundTrip returns the mean response time, or 0 without responses.
func (e *EventStats) AverageRoundTrip() time.Duration {
	if e.Responses == 0 {
		return 0
	}
	return e.RoundTrip / time.Duration(e.Responses)
}

func newStats() *Stats {
	return &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Connections:       make(map[string]*ConnectionStats),
		Events:            make(map[string]*EventStats),
	}
}

// add folds one event into the statistics.
func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	conn, ok := s.Connections[event.ConnectionID]
	if !ok {
		conn = &ConnectionStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
		s.Connections[event.ConnectionID] = conn
	}
	conn.Events++
	if event.Timestamp.After(conn.LastSeen) {
		conn.LastSeen = event.Timestamp
	}

	switch {
	case event.Frame != nil:
		if event.Direction == log.DirectionIn {
			conn.BytesIn += event.Frame.Size
		} else {
			conn.BytesOut += event.Frame.Size
		}

	case event.Message != nil:
		s.addMessage(event.Direction, event.Message)

	case event.StateChange != nil:
		if event.StateChange.Code != 0 {
			conn.CloseCode = event.StateChange.Code
		}

	case event.ControlMsg != nil:
		if event.ControlMsg.Type == log.ControlMsgPing {
			s.Pings++
		}

	case event.Error != nil:
		s.Errors++
	}
}

func (s *Stats) addMessage(dir log.Direction, msg *log.MessageEvent) {
	if msg.Event == "" {
		return
	}
	es, ok := s.Events[msg.Event]
	if !ok {
		es = &EventStats{}
		s.Events[msg.Event] = es
	}

	switch msg.Type {
	case log.MessageTypeEvent:
		if dir == log.DirectionOut {
			es.Sent++
		} else {
			es.Received++
		}
	case log.MessageTypeResponse:
		es.Responses++
		if msg.HasError {
			es.Failed++
		}
		if msg.RoundTrip != nil {
			es.RoundTrip += *msg.RoundTrip
		}
	}
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := newStats()
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Protocol Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
	}
	fmt.Fprintf(w, "Total Events: %d  Pings: %d  Errors: %d\n", stats.TotalEvents, stats.Pings, stats.Errors)
	fmt.Fprintln(w)

	fmt.Fprintln(w, renderBreakdown(stats))
	fmt.Fprintln(w)

	if len(stats.Connections) > 0 {
		fmt.Fprintln(w, renderConnections(stats.Connections))
		fmt.Fprintln(w)
	}
	if len(stats.Events) > 0 {
		fmt.Fprintln(w, renderEvents(stats.Events))
	}
}

func renderBreakdown(stats *Stats) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Group", "Value", "Events"})

	for _, layer := range []log.Layer{log.LayerTransport, log.LayerWire, log.LayerSession} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			t.AppendRow(table.Row{"Layer", layer.String(), count})
		}
	}
	for _, cat := range []log.Category{log.CategoryMessage, log.CategoryControl, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			t.AppendRow(table.Row{"Category", cat.String(), count})
		}
	}
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			t.AppendRow(table.Row{"Direction", dir.String(), count})
		}
	}

	return t.Render()
}

func renderConnections(conns map[string]*ConnectionStats) string {
	type connInfo struct {
		id    string
		stats *ConnectionStats
	}
	sorted := make([]connInfo, 0, len(conns))
	for id, cs := range conns {
		sorted = append(sorted, connInfo{id, cs})
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].stats.FirstSeen.Before(sorted[j].stats.FirstSeen)
	})

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Connection", "Events", "Bytes in", "Bytes out", "Duration", "Close code"})
	for _, c := range sorted {
		closeCode := "-"
		if c.stats.CloseCode != 0 {
			closeCode = fmt.Sprint(c.stats.CloseCode)
		}
		t.AppendRow(table.Row{
			shortenConnID(c.id),
			c.stats.Events,
			c.stats.BytesIn,
			c.stats.BytesOut,
			c.stats.LastSeen.Sub(c.stats.FirstSeen).Round(time.Millisecond),
			closeCode,
		})
	}
	return t.Render()
}

func renderEvents(events map[string]*EventStats) string {
	names := make([]string, 0, len(events))
	for name := range events {
		names = append(names, name)
	}
	sort.Strings(names)

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Event", "Sent", "Received", "Responses", "Failed", "Avg RTT"})
	for _, name := range names {
		es := events[name]
		rtt := "-"
		if es.Responses > 0 && es.RoundTrip > 0 {
			rtt = formatDuration(es.AverageRoundTrip())
		}
		t.AppendRow(table.Row{name, es.Sent, es.Received, es.Responses, es.Failed, rtt})
	}
	return t.Render()
}
