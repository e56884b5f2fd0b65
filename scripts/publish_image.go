//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	imageStream     = "stream:sector:image"
	occupancyStream = "stream:spot:occupancy"
)

type SectorImageEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	SectorID  uuid.UUID `json:"sector_id"`
	ImagePath string    `json:"image_path,omitempty"`
	Purpose   string    `json:"purpose"`
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	sector := flag.String("sector", "", "Sector ID")
	image := flag.String("image", "", "Image path, relative to IMAGES_BASE_PATH (empty: latest image)")
	purpose := flag.String("purpose", "reconcile", "reconcile or calibrate")
	wait := flag.Duration("wait", 30*time.Second, "How long to wait for occupancy changes")
	flag.Parse()

	sectorID, err := uuid.Parse(*sector)
	if err != nil {
		log.Fatalf("Invalid -sector: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: *redisAddr})
	defer client.Close()

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Remember where the occupancy stream ends so only new changes are shown
	lastID := "0"
	if msgs, err := client.XRevRangeN(ctx, occupancyStream, "+", "-", 1).Result(); err == nil && len(msgs) > 0 {
		lastID = msgs[0].ID
	}

	event := SectorImageEvent{
		EventID:   uuid.New(),
		SectorID:  sectorID,
		ImagePath: *image,
		Purpose:   *purpose,
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: imageStream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Event published\n")
	fmt.Printf("   Stream: %s\n", imageStream)
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Sector ID: %s\n", event.SectorID)
	fmt.Printf("   Purpose: %s\n", event.Purpose)

	if *purpose != "reconcile" {
		return
	}

	fmt.Printf("\nWaiting for occupancy changes in %s...\n", occupancyStream)

	deadline := time.Now().Add(*wait)
	for time.Now().Before(deadline) {
		results, err := client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{occupancyStream, lastID},
			Count:   100,
			Block:   time.Second,
		}).Result()
		if err != nil && err != redis.Nil {
			log.Fatalf("Failed to read %s: %v", occupancyStream, err)
		}

		for _, stream := range results {
			for _, msg := range stream.Messages {
				lastID = msg.ID

				dataStr, ok := msg.Values["data"].(string)
				if !ok {
					continue
				}

				var change map[string]interface{}
				if err := json.Unmarshal([]byte(dataStr), &change); err != nil {
					continue
				}
				if change["sector_id"] != sectorID.String() {
					continue
				}

				pretty, _ := json.MarshalIndent(change, "", "  ")
				fmt.Printf("%s\n", pretty)
			}
		}
	}
}
