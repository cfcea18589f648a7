// Package scanner discovers ZKTeco devices on the local network: it
// enumerates candidate IPs (the operator's own /24 plus a handful of common
// subnets) and, per host, probes the known ZKTeco ports until one answers,
// then probes the remaining ZKTeco and web ports to build the full set of
// open ports, grounded on the original Rust device_scanner.rs module this
// was translated from.
package scanner

import (
	"context"
	"fmt"
	"net"
	"sort"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/zkattend/zkattend/zkclient"
	"github.com/zkattend/zkattend/zkconfig"
)

// maxConcurrent bounds the number of in-flight TCP dials, mirroring the
// original scanner's MAX_CONCURRENT.
const maxConcurrent = 100

// defaultZKTecoPorts and defaultWebPorts are the port lists probeHost uses
// unless a zkconfig.ScanConfig overrides them (spec.md §4.6). Web ports are
// only probed on a host that already answered on a ZKTeco port.
var (
	defaultZKTecoPorts = []int{4370, 4360, 5005, 5010, 89}
	defaultWebPorts    = []int{80, 8080, 443, 8443}
)

// defaultCommonSubnets is probed in addition to whatever /24 the operator's
// own interface sits on, covering the handful of private ranges ZKTeco
// installers default to (spec.md §4.6).
var defaultCommonSubnets = []string{
	"192.168.0", "192.168.1", "192.168.2",
	"10.0.0", "10.0.1",
	"172.16.0",
}

// firstStageTimeout bounds each ZKTeco-port dial while a host has not yet
// shown any evidence of being a device. secondStageTimeout bounds every
// dial once one ZKTeco port has already answered (spec.md §4.6).
const (
	firstStageTimeout  = 300 * time.Millisecond
	secondStageTimeout = 200 * time.Millisecond
)

// deviceInfoTimeout bounds the short device-info fetch run against a host
// that answered on at least one ZKTeco port (spec.md §4.6).
const deviceInfoTimeout = 3 * time.Second

// DeviceSummary is one responsive host found during a scan.
type DeviceSummary struct {
	IP              string
	MAC             string
	OpenPorts       []int
	DeviceName      string
	FirmwareVersion string
	SerialNumber    string
}

// Scan probes the local network with the built-in defaults and returns
// every host that answered on at least one ZKTeco port, sorted by IP.
func Scan(ctx context.Context) ([]DeviceSummary, error) {
	return ScanWithConfig(ctx, zkconfig.Default().Scan)
}

// ScanWithConfig probes the local network using cfg's subnets/ports/timeout
// in place of the built-in defaults for any field cfg leaves zero-valued.
func ScanWithConfig(ctx context.Context, cfg zkconfig.ScanConfig) ([]DeviceSummary, error) {
	zktecoPorts := cfg.ZKTecoPorts
	if len(zktecoPorts) == 0 {
		zktecoPorts = defaultZKTecoPorts
	}
	webPorts := cfg.OtherPorts
	if len(webPorts) == 0 {
		webPorts = defaultWebPorts
	}
	firstTimeout := cfg.ProbeTimeout
	if firstTimeout == 0 {
		firstTimeout = firstStageTimeout
	}

	subnets := cfg.Subnets
	if len(subnets) == 0 {
		subnets = candidateSubnets()
	}

	sem := semaphore.NewWeighted(maxConcurrent)
	results := make(chan DeviceSummary, len(subnets)*254)

	var pending int
	for _, subnet := range subnets {
		for host := 1; host <= 254; host++ {
			ip := fmt.Sprintf("%s.%d", subnet, host)
			pending++
			go probeHost(ctx, sem, results, ip, zktecoPorts, webPorts, firstTimeout)
		}
	}

	var found []DeviceSummary
	for i := 0; i < pending; i++ {
		if d := <-results; d.IP != "" {
			found = append(found, d)
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].IP < found[j].IP })
	return found, nil
}

// probeHost tries ip's ZKTeco ports in order, one at a time, until one
// answers (firstTimeout each). If none answer, ip is not a candidate and a
// zero-value DeviceSummary is sent. Otherwise every remaining ZKTeco and web
// port is probed (secondStageTimeout each) to build the full open-port set,
// and a short device-info fetch is attempted against the first open ZKTeco
// port, attaching whatever non-empty fields it returns.
func probeHost(ctx context.Context, sem *semaphore.Weighted, out chan<- DeviceSummary, ip string, zktecoPorts, webPorts []int, firstTimeout time.Duration) {
	open := map[int]bool{}

	for _, port := range zktecoPorts {
		if dialOpen(ctx, sem, ip, port, firstTimeout) {
			open[port] = true
			break
		}
	}
	if len(open) == 0 {
		out <- DeviceSummary{}
		return
	}

	var remaining []int
	for _, port := range zktecoPorts {
		if !open[port] {
			remaining = append(remaining, port)
		}
	}
	remaining = append(remaining, webPorts...)
	for _, port := range remaining {
		if dialOpen(ctx, sem, ip, port, secondStageTimeout) {
			open[port] = true
		}
	}

	ports := make([]int, 0, len(open))
	for p := range open {
		ports = append(ports, p)
	}
	sort.Ints(ports)

	summary := DeviceSummary{IP: ip, MAC: "Unknown", OpenPorts: ports}
	attachDeviceInfo(ctx, ip, ports, zktecoPorts, &summary)

	out <- summary
}

// dialOpen acquires a semaphore slot and reports whether ip:port accepted a
// TCP connection within timeout.
func dialOpen(ctx context.Context, sem *semaphore.Weighted, ip string, port int, timeout time.Duration) bool {
	if err := sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer sem.Release(1)

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", ip, port))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// attachDeviceInfo runs a short-timeout device-info fetch against the first
// open ZKTeco port and copies whatever non-empty fields it returns onto
// summary. Any failure (no ZKTeco port open, connect error, protocol error)
// leaves summary's info fields at their zero value rather than failing the
// scan (spec.md §4.6).
func attachDeviceInfo(ctx context.Context, ip string, openPorts, zktecoPorts []int, summary *DeviceSummary) {
	port := pickZKTecoPort(openPorts, zktecoPorts)
	if port == 0 {
		return
	}

	infoCtx, cancel := context.WithTimeout(ctx, deviceInfoTimeout)
	defer cancel()

	c := zkclient.New(ip, port,
		zkclient.WithConnectTimeout(deviceInfoTimeout),
		zkclient.WithReadWriteTimeout(deviceInfoTimeout),
	)
	if err := c.Connect(infoCtx); err != nil {
		return
	}
	defer func() { _ = c.Disconnect() }()

	info, err := c.DeviceInfo()
	if err != nil {
		return
	}
	summary.DeviceName = info.DeviceName
	summary.FirmwareVersion = info.FirmwareVersion
	summary.SerialNumber = info.SerialNumber
}

// pickZKTecoPort returns the lowest-numbered port in openPorts (already
// sorted) that is also one of zktecoPorts, or 0 if none is.
func pickZKTecoPort(openPorts, zktecoPorts []int) int {
	isZKTeco := make(map[int]bool, len(zktecoPorts))
	for _, p := range zktecoPorts {
		isZKTeco[p] = true
	}
	for _, p := range openPorts {
		if isZKTeco[p] {
			return p
		}
	}
	return 0
}

// candidateSubnets returns the operator's own /24 (discovered via the
// UDP-connect trick, which never sends a packet) plus the fixed common
// subnets, deduplicated.
func candidateSubnets() []string {
	seen := map[string]bool{}
	var out []string

	if local := localSubnet(); local != "" {
		seen[local] = true
		out = append(out, local)
	}
	for _, s := range defaultCommonSubnets {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// localSubnet derives the operator's own /24 by "connecting" a UDP socket
// to a public address; this never transmits a packet (UDP connect merely
// picks a local route), it just forces the kernel to select the outbound
// interface/address that would be used.
func localSubnet() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return ""
	}
	defer conn.Close()
	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return ""
	}
	ip4 := addr.IP.To4()
	if ip4 == nil {
		return ""
	}
	return fmt.Sprintf("%d.%d.%d", ip4[0], ip4[1], ip4[2])
}
