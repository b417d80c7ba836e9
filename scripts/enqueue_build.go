//go:build ignore

// enqueue_build публикует заявку на прогон в stream:basket:build и ждёт
// результат в stream:basket:done. Для ручной проверки воркера:
//
//	go run scripts/enqueue_build.go -redis localhost:6379 -origins 530330001001 -quota grocery=2,park=1
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/basket-ranking/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func parseQuota(s string) (domain.Quota, error) {
	if s == "" {
		return nil, nil
	}
	q := domain.Quota{}
	for _, part := range strings.Split(s, ",") {
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("bad quota entry %q", part)
		}
		cat, err := domain.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("bad quota value %q: %w", value, err)
		}
		q[cat] = n
	}
	return q, q.Validate()
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	origins := flag.String("origins", "", "comma separated block group ids, empty - whole catalog")
	quota := flag.String("quota", "", "category=n pairs, e.g. grocery=2,park=1")
	wait := flag.Duration("wait", 2*time.Minute, "how long to wait for the done event")
	flag.Parse()

	q, err := parseQuota(*quota)
	if err != nil {
		log.Fatalf("Invalid quota: %v", err)
	}

	event := domain.BuildRequestedEvent{JobID: uuid.New(), Quota: q}
	if *origins != "" {
		event.OriginIDs = strings.Split(*origins, ",")
	}
	if err := event.Validate(); err != nil {
		log.Fatalf("Invalid event: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: *redisAddr})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// запоминаем хвост done-стрима, чтобы не читать старые ответы
	lastID := "$"
	if msgs, err := client.XRevRangeN(ctx, domain.StreamBasketDone, "+", "-", 1).Result(); err == nil && len(msgs) > 0 {
		lastID = msgs[0].ID
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	id, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: domain.StreamBasketBuild,
		Values: map[string]interface{}{"data": string(data)},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Published job %s as %s\n", event.JobID, id)
	fmt.Printf("Waiting for %s...\n", domain.StreamBasketDone)

	deadline := time.Now().Add(*wait)
	for time.Now().Before(deadline) {
		streams, err := client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{domain.StreamBasketDone, lastID},
			Count:   10,
			Block:   time.Second,
		}).Result()
		if err != nil && err != redis.Nil {
			log.Fatalf("Failed to read done stream: %v", err)
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				lastID = msg.ID
				raw, ok := msg.Values["data"].(string)
				if !ok {
					continue
				}
				var done domain.BuildDoneEvent
				if err := json.Unmarshal([]byte(raw), &done); err != nil || done.JobID != event.JobID {
					continue
				}
				pretty, _ := json.MarshalIndent(done, "", "  ")
				fmt.Printf("%s\n", pretty)
				return
			}
		}
	}
	fmt.Println("Timeout waiting for response")
}
