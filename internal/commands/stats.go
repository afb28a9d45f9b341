package commands

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	"go-warden/internal/logging"
	"go-warden/internal/metrics"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// handleStats shows host, runtime and moderation statistics
func (h *Handler) handleStats(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	_, actor, err := h.invoker(s, i)
	if err != nil {
		return err
	}
	if !actor.Administrator {
		return newReplier(s, i.Interaction).text("You are not an administrator.", true)
	}

	// gathering takes about a second for the CPU sample
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		return err
	}

	stats := gatherSystemStats(s)
	if h.metrics != nil {
		stats.Counters = h.metrics.Snapshot()
		stats.BotUptime = h.metrics.Uptime()
	}
	if h.db != nil {
		if counts, err := h.db.CountByOutcome(i.GuildID); err == nil {
			stats.Outcomes = counts
		} else {
			logging.Warn("Failed to count outcomes: %v", err)
		}
	}

	embeds := createStatsEmbeds(stats)
	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &embeds,
	})
	return err
}

// SystemStats holds the figures shown by /stats
type SystemStats struct {
	Hostname string
	Platform string
	Uptime   time.Duration

	CPUModel   string
	CPUThreads int
	CPUUsage   float64

	TotalMemory   uint64
	UsedMemory    uint64
	MemoryPercent float64

	DiskTotal   uint64
	DiskUsed    uint64
	DiskPercent float64

	GoVersion  string
	GoRoutines int
	MemAlloc   uint64
	NumGC      uint32

	BotUptime time.Duration
	Latency   time.Duration

	// Counters are this process's outcome counters; Outcomes come from
	// the action log and survive restarts.
	Counters []metrics.Sample
	Outcomes map[string]int
}

var botStartTime = time.Now()

func gatherSystemStats(s *discordgo.Session) *SystemStats {
	stats := &SystemStats{}

	if hostInfo, err := host.Info(); err == nil {
		stats.Hostname = hostInfo.Hostname
		stats.Platform = hostInfo.Platform + " " + hostInfo.PlatformVersion
		stats.Uptime = time.Duration(hostInfo.Uptime) * time.Second
	}

	if cpuInfo, err := cpu.Info(); err == nil && len(cpuInfo) > 0 {
		stats.CPUModel = cpuInfo[0].ModelName
	}
	stats.CPUThreads = runtime.NumCPU()
	if pct, err := cpu.Percent(time.Second, false); err == nil && len(pct) > 0 {
		stats.CPUUsage = pct[0]
	}

	if memInfo, err := mem.VirtualMemory(); err == nil {
		stats.TotalMemory = memInfo.Total
		stats.UsedMemory = memInfo.Used
		stats.MemoryPercent = memInfo.UsedPercent
	}

	if diskInfo, err := disk.Usage("/"); err == nil {
		stats.DiskTotal = diskInfo.Total
		stats.DiskUsed = diskInfo.Used
		stats.DiskPercent = diskInfo.UsedPercent
	}

	stats.GoVersion = runtime.Version()
	stats.GoRoutines = runtime.NumGoroutine()
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.MemAlloc = m.Alloc
	stats.NumGC = m.NumGC

	stats.BotUptime = time.Since(botStartTime)
	stats.Latency = s.HeartbeatLatency()

	return stats
}

func createStatsEmbeds(stats *SystemStats) []*discordgo.MessageEmbed {
	hostEmbed := &discordgo.MessageEmbed{
		Title: "System",
		Color: 0x00BFFF,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "Host",
				Value: fmt.Sprintf("**Hostname:** `%s`\n**Platform:** `%s`\n**Uptime:** `%s`",
					stats.Hostname, stats.Platform, formatDuration(stats.Uptime)),
			},
			{
				Name: "CPU",
				Value: fmt.Sprintf("**Model:** `%s`\n**Threads:** `%d`\n**Usage:** `%.2f%%`\n%s",
					truncateString(stats.CPUModel, 40), stats.CPUThreads, stats.CPUUsage,
					createProgressBar(stats.CPUUsage, 100)),
				Inline: true,
			},
			{
				Name: "Memory",
				Value: fmt.Sprintf("**Used:** `%s` / `%s`\n%s",
					formatBytes(stats.UsedMemory), formatBytes(stats.TotalMemory),
					createProgressBar(stats.MemoryPercent, 100)),
				Inline: true,
			},
			{
				Name: "Disk",
				Value: fmt.Sprintf("**Used:** `%s` / `%s`\n%s",
					formatBytes(stats.DiskUsed), formatBytes(stats.DiskTotal),
					createProgressBar(stats.DiskPercent, 100)),
				Inline: true,
			},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	botEmbed := &discordgo.MessageEmbed{
		Title: "Bot",
		Color: 0xFF1493,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "Status",
				Value: fmt.Sprintf("**Uptime:** `%s`\n**Latency:** `%dms`",
					formatDuration(stats.BotUptime), stats.Latency.Milliseconds()),
				Inline: true,
			},
			{
				Name: "Go Runtime",
				Value: fmt.Sprintf("**Version:** `%s`\n**Goroutines:** `%d`\n**Allocated:** `%s`\n**GC Cycles:** `%d`",
					stats.GoVersion, stats.GoRoutines, formatBytes(stats.MemAlloc), stats.NumGC),
				Inline: true,
			},
			{
				Name:  "Since Start",
				Value: formatCounters(stats.Counters),
			},
			{
				Name:  "All Time",
				Value: formatOutcomes(stats.Outcomes),
			},
		},
	}

	return []*discordgo.MessageEmbed{hostEmbed, botEmbed}
}

func formatCounters(samples []metrics.Sample) string {
	if len(samples) == 0 {
		return "`none`"
	}
	lines := make([]string, 0, len(samples))
	for _, sm := range samples {
		lines = append(lines, fmt.Sprintf("`%s` %d", sm.Name, sm.Value))
	}
	return truncateString(strings.Join(lines, "\n"), 1024)
}

func formatOutcomes(counts map[string]int) string {
	if len(counts) == 0 {
		return "`none`"
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("`%s` %d", name, counts[name]))
	}
	return truncateString(strings.Join(lines, "\n"), 1024)
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func createProgressBar(value, max float64) string {
	filled := int(value / max * 10)
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return "`" + strings.Repeat("█", filled) + strings.Repeat("░", 10-filled) + "`"
}

func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
