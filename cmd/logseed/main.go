// Command logseed is a synthetic log producer for exercising rotord
// without any other infrastructure in place. It round-robins generated
// lines across the configured families and periodically hands a batch
// off as a stamped sentinel file, the way a real producer would.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	watchDir      = flag.String("watch-dir", ".", "Directory to drop sentinel files into")
	familiesFlag  = flag.String("families", "ipstrc,pdtrc,ipmgr", "Comma-separated family names to produce for")
	linesPerSec   = flag.Float64("rate", 10, "Approximate lines generated per second, summed across all families")
	linesPerBatch = flag.Int("lines-per-sentinel", 20, "Lines accumulated before a family's buffer is flushed as a sentinel")
)

var sampleMessages = []string{
	"connection established from 192.168.1.%d",
	"packet received: size=%d bytes",
	"session initiated with client %d",
	"buffer overflow prevented on stream %d",
	"checksum validation passed for chunk %d",
	"lease renewed for address pool %d",
	"subnet mask updated on interface %d",
	"retransmission attempt %d",
	"window size adjusted to %d",
	"gateway configuration changed by operator %d",
}

var levels = []string{"INFO", "WARN", "ERROR", "DEBUG"}

func main() {
	flag.Parse()

	families := splitFamilies(*familiesFlag)
	if len(families) == 0 {
		fmt.Fprintln(os.Stderr, "logseed: at least one family is required")
		os.Exit(1)
	}

	if *linesPerSec <= 0 {
		fmt.Fprintln(os.Stderr, "logseed: rate must be positive")
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	buffers := make([]strings.Builder, len(families))
	counts := make([]int, len(families))

	interval := time.Duration(float64(time.Second) / *linesPerSec)
	if interval <= 0 {
		interval = time.Millisecond
	}

	fmt.Printf("logseed: writing sentinels for %v into %s (~%.1f lines/sec, %d lines/sentinel)\n",
		families, *watchDir, *linesPerSec, *linesPerBatch)
	fmt.Println("Press Ctrl+C to stop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	counter := 0
	for range ticker.C {
		idx := counter % len(families)
		if rng.Intn(100) < 20 {
			idx = rng.Intn(len(families))
		}

		line := generateLine(rng, families[idx])
		buffers[idx].WriteString(line)
		counts[idx]++
		counter++

		if counts[idx] >= *linesPerBatch {
			if err := flushSentinel(*watchDir, families[idx], buffers[idx].String()); err != nil {
				fmt.Fprintf(os.Stderr, "logseed: failed to write sentinel for %s: %v\n", families[idx], err)
			}
			buffers[idx].Reset()
			counts[idx] = 0
		}
	}
}

func generateLine(rng *rand.Rand, family string) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	level := levels[rng.Intn(len(levels))]
	template := sampleMessages[rng.Intn(len(sampleMessages))]
	return fmt.Sprintf("[%s] [%s] [%s] "+template+"\n", timestamp, level, family, rng.Intn(1000))
}

// flushSentinel writes buf to a stamped sentinel file for family,
// landing it atomically via write-then-rename so the directory watch
// never observes a partially written sentinel.
func flushSentinel(dir, family, buf string) error {
	stamp := time.Now().UnixNano()
	name := fmt.Sprintf("%s.%d.bak", family, stamp)
	tmp := filepath.Join(dir, "."+name+".tmp")
	final := filepath.Join(dir, name)

	if err := os.WriteFile(tmp, []byte(buf), 0644); err != nil {
		return err
	}
	return os.Rename(tmp, final)
}

func splitFamilies(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
