package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cheflow-backend/internal/timeutil"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// MonitoringServer runs the operations dashboard on its own port:
// database and host stats, day-of workload counters, and alerts
// pushed to connected dashboards over WebSocket.
type MonitoringServer struct {
	db         *pgxpool.Pool
	port       int
	alerts     []Alert
	alertsMux  sync.RWMutex
	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan Alert
}

type Alert struct {
	ID        int       `json:"id"`
	Severity  string    `json:"severity"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Resolved  bool      `json:"resolved"`
}

type DashboardStats struct {
	DatabaseStatus    string        `json:"database_status"`
	ActiveConnections int           `json:"active_connections"`
	ResponseTime      int64         `json:"response_time_ms"`
	ActiveAlerts      int           `json:"active_alerts"`
	CPUPercent        float64       `json:"cpu_percent"`
	MemoryPercent     float64       `json:"memory_percent"`
	DiskPercent       float64       `json:"disk_percent"`
	DBSize            string        `json:"db_size"`
	Uptime            string        `json:"uptime"`
	MemoryUsed        string        `json:"memory_used"`
	MemoryTotal       string        `json:"memory_total"`
	DiskUsed          string        `json:"disk_used"`
	DiskTotal         string        `json:"disk_total"`
	Workload          WorkloadStats `json:"workload"`
}

// WorkloadStats gives dispatchers a live picture of today's load.
type WorkloadStats struct {
	DeliveriesToday     int `json:"deliveries_today"`
	DeliveriesDelivered int `json:"deliveries_delivered"`
	RoutesInProgress    int `json:"routes_in_progress"`
	ChecklistsOpen      int `json:"checklists_open"`
	UnlinkedContracts   int `json:"unlinked_contracts"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewMonitoringServer(db *pgxpool.Pool, port int) *MonitoringServer {
	return &MonitoringServer{
		db:        db,
		port:      port,
		alerts:    make([]Alert, 0),
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Alert),
	}
}

func (ms *MonitoringServer) Start() {
	r := mux.NewRouter()

	r.HandleFunc("/api/stats", ms.getStats).Methods("GET")
	r.HandleFunc("/api/alerts", ms.getAlerts).Methods("GET")

	// WebSocket for real-time alert pushes
	r.HandleFunc("/ws", ms.handleWebSocket)

	go ms.handleBroadcast()
	go ms.monitorHealth()

	addr := fmt.Sprintf(":%d", ms.port)
	log.Info().Str("addr", addr).Msg("monitoring dashboard listening")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Error().Err(err).Msg("monitoring server stopped")
	}
}

func (ms *MonitoringServer) getStats(w http.ResponseWriter, r *http.Request) {
	stats := ms.collectStats()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (ms *MonitoringServer) collectStats() DashboardStats {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := ms.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	dbStatus := "healthy"
	if err != nil {
		dbStatus = "unhealthy"
	}

	var activeConns int
	ms.db.QueryRow(ctx, "SELECT count(*) FROM pg_stat_activity").Scan(&activeConns)

	var dbSizeBytes int64
	ms.db.QueryRow(ctx, "SELECT pg_database_size(current_database())").Scan(&dbSizeBytes)
	dbSize := formatBytes(uint64(dbSizeBytes))

	var uptimeSec int
	ms.db.QueryRow(ctx, "SELECT EXTRACT(EPOCH FROM (NOW() - pg_postmaster_start_time()))::int").Scan(&uptimeSec)
	uptime := formatUptime(uptimeSec)

	cpuPercents, _ := cpu.Percent(time.Second, false)
	cpuPercent := 0.0
	if len(cpuPercents) > 0 {
		cpuPercent = cpuPercents[0]
	}

	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")

	ms.alertsMux.RLock()
	activeAlertCount := 0
	for _, alert := range ms.alerts {
		if !alert.Resolved {
			activeAlertCount++
		}
	}
	ms.alertsMux.RUnlock()

	return DashboardStats{
		DatabaseStatus:    dbStatus,
		ActiveConnections: activeConns,
		ResponseTime:      responseTime,
		ActiveAlerts:      activeAlertCount,
		CPUPercent:        cpuPercent,
		MemoryPercent:     memStats.UsedPercent,
		DiskPercent:       diskStats.UsedPercent,
		DBSize:            dbSize,
		Uptime:            uptime,
		MemoryUsed:        formatBytes(memStats.Used),
		MemoryTotal:       formatBytes(memStats.Total),
		DiskUsed:          formatBytes(diskStats.Used),
		DiskTotal:         formatBytes(diskStats.Total),
		Workload:          ms.collectWorkload(ctx),
	}
}

func (ms *MonitoringServer) collectWorkload(ctx context.Context) WorkloadStats {
	var w WorkloadStats
	today := timeutil.StartOfDay(timeutil.Now())

	ms.db.QueryRow(ctx,
		"SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'delivered') FROM deliveries WHERE delivery_date = $1",
		today).Scan(&w.DeliveriesToday, &w.DeliveriesDelivered)
	ms.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM routes WHERE status = 'in_progress'").Scan(&w.RoutesInProgress)
	ms.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM checklists WHERE status IN ('in_progress', 'incomplete')").Scan(&w.ChecklistsOpen)
	ms.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM contracts WHERE (delivery_id IS NULL OR checklist_id IS NULL) AND status <> 'cancelled'").Scan(&w.UnlinkedContracts)

	return w
}

func formatBytes(bytes uint64) string {
	gb := float64(bytes) / (1024 * 1024 * 1024)
	if gb < 1 {
		mb := float64(bytes) / (1024 * 1024)
		return fmt.Sprintf("%.1f MB", mb)
	}
	return fmt.Sprintf("%.1f GB", gb)
}

func formatUptime(seconds int) string {
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func (ms *MonitoringServer) getAlerts(w http.ResponseWriter, r *http.Request) {
	ms.alertsMux.RLock()
	defer ms.alertsMux.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ms.alerts)
}

func (ms *MonitoringServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ms.clientsMux.Lock()
	ms.clients[conn] = true
	ms.clientsMux.Unlock()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			ms.clientsMux.Lock()
			delete(ms.clients, conn)
			ms.clientsMux.Unlock()
			break
		}
	}
}

func (ms *MonitoringServer) handleBroadcast() {
	for alert := range ms.broadcast {
		ms.clientsMux.Lock()
		for client := range ms.clients {
			if err := client.WriteJSON(alert); err != nil {
				client.Close()
				delete(ms.clients, client)
			}
		}
		ms.clientsMux.Unlock()
	}
}

func (ms *MonitoringServer) raise(alert Alert) {
	ms.alertsMux.Lock()
	alert.ID = len(ms.alerts) + 1
	alert.Timestamp = time.Now()
	ms.alerts = append(ms.alerts, alert)
	ms.alertsMux.Unlock()

	ms.broadcast <- alert
}

func (ms *MonitoringServer) monitorHealth() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		stats := ms.collectStats()

		if stats.DatabaseStatus == "unhealthy" {
			ms.raise(Alert{
				Severity: "critical",
				Type:     "database_down",
				Message:  "Database is unreachable",
			})
		}

		if stats.ResponseTime > 1000 {
			ms.raise(Alert{
				Severity: "warning",
				Type:     "high_latency",
				Message:  fmt.Sprintf("Database response time: %dms", stats.ResponseTime),
			})
		}

		if stats.Workload.UnlinkedContracts > 10 {
			ms.raise(Alert{
				Severity: "warning",
				Type:     "unlinked_contracts",
				Message:  fmt.Sprintf("%d contracts missing delivery or checklist links", stats.Workload.UnlinkedContracts),
			})
		}
	}
}
