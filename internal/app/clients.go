package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/learnsphere-backend/internal/platform/gcp"
	"github.com/yungbote/learnsphere-backend/internal/platform/gemini"
	"github.com/yungbote/learnsphere-backend/internal/platform/lease"
	"github.com/yungbote/learnsphere-backend/internal/platform/logger"
	"github.com/yungbote/learnsphere-backend/internal/platform/pdftext"
	"github.com/yungbote/learnsphere-backend/internal/platform/storage"
)

type Clients struct {
	LLM       gemini.Client
	Store     storage.Store
	OCR       gcp.OCR
	Extractor pdftext.Extractor
	Redis     *goredis.Client
	Lease     lease.Lease
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var c Clients

	llm, err := gemini.New(ctx, log, cfg.Gemini)
	if err != nil {
		return Clients{}, fmt.Errorf("init llm client: %w", err)
	}
	c.LLM = llm

	store, err := storage.New(ctx, log, cfg.Storage)
	if err != nil {
		c.Close()
		return Clients{}, fmt.Errorf("init object storage: %w", err)
	}
	c.Store = store

	// OCR is optional; scanned PDFs then yield empty text.
	if cfg.OCR.Enabled() {
		ocr, err := gcp.NewDocumentOCR(ctx, log, cfg.OCR)
		if err != nil {
			c.Close()
			return Clients{}, fmt.Errorf("init document ocr: %w", err)
		}
		c.OCR = ocr
		c.Extractor = pdftext.New(log, ocr)
	} else {
		c.Extractor = pdftext.New(log, nil)
	}

	if strings.TrimSpace(cfg.RedisAddr) != "" {
		rdb, err := lease.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			c.Close()
			return Clients{}, fmt.Errorf("init redis lease: %w", err)
		}
		c.Redis = rdb
		c.Lease = lease.NewRedis(log, rdb)
	} else {
		log.Info("REDIS_ADDR not set, using in-process generation lease")
		c.Lease = lease.NewMemory()
	}

	return c, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.OCR != nil {
		_ = c.OCR.Close()
	}
	if closer, ok := c.Store.(io.Closer); ok {
		_ = closer.Close()
	}
	if closer, ok := c.LLM.(io.Closer); ok {
		_ = closer.Close()
	}
}
