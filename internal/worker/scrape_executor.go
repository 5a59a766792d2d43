package worker

import (
	"context"
	"time"

	"github.com/shaiso/Drone/internal/domain"
	"github.com/shaiso/Drone/internal/telemetry"
)

// Значения по умолчанию для scrape-параметров.
const (
	defaultMaxPages  = 5
	defaultDepth     = 1
	defaultPageDelay = time.Second
)

// ScrapeExecutor — executor типа "scrape".
//
// Заглушка реальной scrape-логики: последовательность задержек
// по странице с логированием прогресса и итоговым payload, который
// эхом возвращает входные параметры. Реальный парсинг страниц сюда
// не входит.
//
// Params:
//   - url (string): целевой адрес (принимается и target_url)
//   - max_pages (number): количество страниц (default: 5)
//   - depth (number): глубина обхода (default: 1)
//   - page_delay_ms (number): задержка на страницу в мс (default: 1000)
//
// Outputs:
//   - url, pages_scraped, depth_reached, completion_time
type ScrapeExecutor struct{}

// Execute выполняет симулированный scrape.
func (e *ScrapeExecutor) Execute(ctx context.Context, task *domain.Task) (*ExecutionResult, error) {
	logger := telemetry.FromContext(ctx)

	url := getString(task.Params, "url", "")
	if url == "" {
		url = getString(task.Params, "target_url", "")
	}

	maxPages := getInt(task.Params, "max_pages", defaultMaxPages)
	depth := getInt(task.Params, "depth", defaultDepth)

	delay := defaultPageDelay
	if ms := getInt(task.Params, "page_delay_ms", 0); ms > 0 {
		delay = time.Duration(ms) * time.Millisecond
	}

	for page := 1; page <= maxPages; page++ {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		logger.Info("scraping progress",
			"task_id", task.ID,
			"page", page,
			"total", maxPages,
			"percent", page*100/maxPages,
		)
	}

	return &ExecutionResult{
		Outputs: map[string]any{
			"url":             url,
			"pages_scraped":   maxPages,
			"depth_reached":   depth,
			"completion_time": time.Now().Format(time.RFC3339),
		},
	}, nil
}

// getString извлекает строку из map с default значением.
func getString(m map[string]any, key, defaultVal string) string {
	if val, ok := m[key]; ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return defaultVal
}

// getInt извлекает число из map с default значением.
// JSON-декодер отдаёт числа как float64.
func getInt(m map[string]any, key string, defaultVal int) int {
	if val, ok := m[key]; ok {
		switch v := val.(type) {
		case float64:
			return int(v)
		case int:
			return v
		}
	}
	return defaultVal
}
