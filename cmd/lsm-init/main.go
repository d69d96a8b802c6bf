package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/IDGS10A-ECONORTE/lsm-server/internal/config"
	"github.com/IDGS10A-ECONORTE/lsm-server/internal/gesture"
	"github.com/IDGS10A-ECONORTE/lsm-server/internal/signstore"
	"github.com/IDGS10A-ECONORTE/lsm-server/internal/utils/log"
)

const insertBatchSize = 256

func main() {
	configPath := flag.String("config", "lsm-server.toml", "path to the TOML configuration file")
	dataPath := flag.String("file", "lsm_dictionary_data.txt", "JSONL file of reference signs")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}
	defer log.Sync()

	dims := gesture.HandDims
	if cfg.Game.Mode == config.ModeDual {
		dims = gesture.DualDims
	}

	signs, err := readSigns(*dataPath, dims)
	if err != nil {
		log.Fatal("failed to read dictionary file", zap.String("file", *dataPath), zap.Error(err))
	}
	if len(signs) == 0 {
		log.Fatal("dictionary file contains no signs", zap.String("file", *dataPath))
	}

	store, err := signstore.Open(cfg.Store)
	if err != nil {
		log.Fatal("failed to open sign store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := store.Recreate(ctx, dims); err != nil {
		log.Fatal("failed to recreate collection", zap.Error(err))
	}

	inserted := 0
	for start := 0; start < len(signs); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(signs) {
			end = len(signs)
		}
		if err := store.Insert(ctx, signs[start:end]); err != nil {
			log.Fatal("failed to insert signs", zap.Int("inserted", inserted), zap.Error(err))
		}
		inserted += end - start
	}

	log.Info("dictionary loaded",
		zap.String("backend", cfg.Store.Backend),
		zap.Int("signs", inserted),
		zap.Int("dims", dims))
}

// readSigns parses one JSON object per line. Blank lines are skipped;
// anything malformed or of the wrong dimensionality aborts the load so a
// partial dictionary never reaches the store.
func readSigns(path string, dims int) ([]signstore.ReferenceSign, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var signs []signstore.ReferenceSign
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var sign signstore.ReferenceSign
		if err := json.Unmarshal([]byte(raw), &sign); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		sign.Label = strings.ToUpper(strings.TrimSpace(sign.Label))
		sign.Difficulty = strings.ToUpper(strings.TrimSpace(sign.Difficulty))
		if sign.Label == "" {
			return nil, fmt.Errorf("line %d: missing sign_name", line)
		}
		if sign.Difficulty == "" {
			sign.Difficulty = signstore.DifficultyAny
		}
		if len(sign.Vector) != dims {
			return nil, fmt.Errorf("line %d: sign %q has %d dimensions, want %d",
				line, sign.Label, len(sign.Vector), dims)
		}
		signs = append(signs, sign)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return signs, nil
}
