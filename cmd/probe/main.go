// Command probe runs one discovery batch from the command line and prints
// a tab-separated result per target.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/majhol08/rtspscout/internal/cache"
	"github.com/majhol08/rtspscout/internal/cameras"
	"github.com/majhol08/rtspscout/internal/catalog"
	"github.com/majhol08/rtspscout/internal/discover"
	"github.com/majhol08/rtspscout/internal/probe"
	"github.com/majhol08/rtspscout/internal/scan"
	"github.com/majhol08/rtspscout/internal/stream"
)

func main() {
	var (
		targets     = flag.String("targets", "", "comma-separated camera IPs (required)")
		port        = flag.Int("port", 0, "port hint, 0 uses 554")
		user        = flag.String("user", "", "username hint")
		password    = flag.String("pass", "", "password hint")
		path        = flag.String("path", "", "stream path, empty auto-discovers")
		vendor      = flag.String("vendor", "", "vendor hint (e.g. hikvision, dahua)")
		workers     = flag.Int("workers", scan.DefaultWorkers, "concurrent probes (1-32)")
		useDefaults = flag.Bool("defaults", false, "try vendor factory credentials")
		cachePath   = flag.String("cache", "rtsp_cache.json", "cache file, empty disables")
		overlay     = flag.String("catalog", "", "vendor catalog overlay YAML")
		timeout     = flag.Duration("timeout", 5*time.Second, "stream validation timeout")
	)
	flag.Parse()

	ips := splitTargets(*targets)
	if len(ips) == 0 {
		fmt.Fprintln(os.Stderr, "at least one -targets IP is required")
		flag.Usage()
		os.Exit(2)
	}
	for _, ip := range ips {
		if net.ParseIP(ip) == nil {
			log.Fatalf("invalid IP: %s", ip)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalogs := catalog.NewRegistry(*overlay)
	if *overlay != "" {
		if err := catalogs.Reload(); err != nil {
			log.Fatalf("catalog overlay: %v", err)
		}
	}

	var store cache.Store
	if *cachePath != "" {
		store = cache.NewFileStore(*cachePath)
	}
	configCache := cache.New(ctx, store)

	engine := discover.NewEngine(
		probe.NewTCPPinger(probe.DefaultPingTimeout),
		probe.NewRTSPFingerprinter(probe.DefaultFingerprintTimeout),
		stream.NewValidator(stream.DefaultWarmUp, *timeout),
		catalogs,
		discover.Options{AllowDefaultCredentials: *useDefaults},
	)

	registry := cameras.NewRegistry()
	for _, ip := range ips {
		registry.Add(cameras.Identity{
			IP:       ip,
			Port:     *port,
			User:     *user,
			Password: *password,
			Vendor:   *vendor,
			Path:     *path,
		})
	}

	manager := scan.NewManager(engine, registry, configCache, nil, nil)
	summary := manager.Run(ctx, registry.IDs(), *workers)

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "IP\tSTATUS\tVENDOR\tURL\tLATENCY\tHINT")
	for _, rec := range registry.List() {
		hint := probe.HintFor(rec.StatusCode)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%dms\t%s\n",
			rec.IP, rec.Status, rec.Vendor, rec.URL, rec.LatencyMs, hint)
	}
	w.Flush()

	fmt.Fprintf(os.Stderr, "%d succeeded, %d failed, %d skipped\n",
		summary.Succeeded, summary.Failed, summary.Skipped)
	if summary.Succeeded == 0 {
		os.Exit(1)
	}
}

func splitTargets(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if ip := strings.TrimSpace(part); ip != "" {
			out = append(out, ip)
		}
	}
	return out
}
