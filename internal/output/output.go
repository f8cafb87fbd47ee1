// Package output renders completed scan records for human and machine
// consumption. Plain output uses a table layout, JSON emits the flat
// record, and CSV emits one row per port result.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/HueCodes/Scuttle/internal/errors"
	"github.com/HueCodes/Scuttle/internal/storage"
	"github.com/olekukonko/tablewriter"
)

// Format selects a rendering.
type Format string

const (
	FormatPlain Format = "plain"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
)

// ParseFormat parses an output format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "plain", "":
		return FormatPlain, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", errors.Newf(errors.CodeValidation, "unknown output format: %q", s)
	}
}

// maxBannerDisplay truncates banners in the plain table so one chatty
// service cannot wreck the layout.
const maxBannerDisplay = 35

// Render writes the record to w in the requested format.
func Render(w io.Writer, record *storage.Record, format Format) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, record)
	case FormatCSV:
		return renderCSV(w, record)
	default:
		return renderPlain(w, record)
	}
}

func renderPlain(w io.Writer, record *storage.Record) error {
	fmt.Fprintf(w, "\nScuttle scan results\n\n")
	fmt.Fprintf(w, "  Target:     %s\n", record.Target)
	fmt.Fprintf(w, "  IP address: %s\n", record.TargetIP)
	fmt.Fprintf(w, "  Scan type:  %s\n", record.ScanType)
	fmt.Fprintf(w, "  Scan ID:    %s\n", record.ShortID())
	fmt.Fprintf(w, "  Duration:   %.2fs\n\n", float64(record.DurationMs)/1000.0)
	fmt.Fprintf(w, "  %d ports scanned: %d open, %d closed, %d filtered\n\n",
		record.PortsScanned, record.OpenPorts, record.ClosedPorts, record.FilteredPorts)

	if len(record.Results) == 0 {
		fmt.Fprintln(w, "  No ports to display.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Port", "Status", "Service", "Banner", "RTT (ms)")
	for i := range record.Results {
		result := &record.Results[i]
		banner := result.Banner
		if len(banner) > maxBannerDisplay {
			banner = banner[:maxBannerDisplay-3] + "..."
		}
		rtt := ""
		if result.ResponseTimeMs != nil {
			rtt = strconv.FormatInt(*result.ResponseTimeMs, 10)
		}
		if err := table.Append(result.Port.String(), result.Status.String(), result.Service, banner, rtt); err != nil {
			return err
		}
	}
	return table.Render()
}

func renderJSON(w io.Writer, record *storage.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(record)
}

func renderCSV(w io.Writer, record *storage.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"port", "status", "service", "banner", "response_time_ms"}); err != nil {
		return err
	}
	for i := range record.Results {
		result := &record.Results[i]
		rtt := ""
		if result.ResponseTimeMs != nil {
			rtt = strconv.FormatInt(*result.ResponseTimeMs, 10)
		}
		row := []string{
			result.Port.String(),
			result.Status.String(),
			result.Service,
			result.Banner,
			rtt,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
