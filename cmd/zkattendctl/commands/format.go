package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/zkattend/zkattend"
	"github.com/zkattend/zkattend/records"
	"github.com/zkattend/zkattend/scanner"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

var errUnsupportedFormat = errors.New("unsupported output format")

func formatFetchResult(resp zkattend.AttendanceResponse, format string) (string, error) {
	switch format {
	case formatJSON:
		return formatFetchResultJSON(resp)
	case formatTable:
		return formatFetchResultTable(resp), nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}

func formatFetchResultTable(resp zkattend.AttendanceResponse) string {
	var buf strings.Builder
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Device:\t%s\n", resp.Device.DeviceName)
	fmt.Fprintf(w, "Firmware:\t%s\n", resp.Device.FirmwareVersion)
	fmt.Fprintf(w, "Serial:\t%s\n", resp.Device.SerialNumber)
	fmt.Fprintf(w, "Fetched At:\t%s\n", resp.FetchedAt.Format(time.RFC3339))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "USER-ID\tNAME")
	for _, u := range resp.Users {
		fmt.Fprintf(w, "%s\t%s\n", u.UserID, u.Name)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "TIMESTAMP\tUSER\tSTATUS")
	for _, a := range resp.Attendance {
		ts := a.TimestampISO
		if a.TimestampInvalid {
			ts = "invalid"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", ts, a.UserName, records.StatusName(a.Status))
	}

	w.Flush()
	return buf.String()
}

func formatFetchResultJSON(resp zkattend.AttendanceResponse) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal fetch result to JSON: %w", err)
	}
	return string(data), nil
}

func formatUsersResult(users []records.User, format string) (string, error) {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(users, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal users result to JSON: %w", err)
		}
		return string(data), nil
	case formatTable:
		var buf strings.Builder
		w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "USER-ID\tNAME")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\n", u.UserID, u.Name)
		}
		w.Flush()
		return buf.String(), nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}

func formatScanResults(found []scanner.DeviceSummary, format string) (string, error) {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(found, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal scan results to JSON: %w", err)
		}
		return string(data), nil
	case formatTable:
		var buf strings.Builder
		w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "IP\tMAC\tOPEN-PORTS\tDEVICE-NAME\tFIRMWARE\tSERIAL")
		for _, d := range found {
			ports := make([]string, len(d.OpenPorts))
			for i, p := range d.OpenPorts {
				ports[i] = strconv.Itoa(p)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				d.IP, d.MAC, strings.Join(ports, ","), d.DeviceName, d.FirmwareVersion, d.SerialNumber)
		}
		w.Flush()
		return buf.String(), nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}
