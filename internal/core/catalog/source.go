package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"skincare-routine/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNotFound 目錄來源不存在
	ErrNotFound = errors.New("catalog file not found")
	// ErrInvalidData 目錄內容無法解析
	ErrInvalidData = errors.New("invalid catalog data")
	// ErrNotLoaded 尚未成功載入過任何目錄
	ErrNotLoaded = errors.New("catalog not loaded")
)

// Source 產品目錄來源
type Source interface {
	Load(ctx context.Context) ([]common.Product, error)
}

// NewSource 依位置選擇來源，http(s) 走遠端，其餘視為本地檔案
func NewSource(location string, timeout time.Duration) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location, timeout)
	}
	return &FileSource{Path: location}
}

// FileSource 本地 JSON 或 YAML 目錄
type FileSource struct {
	Path string
}

// Load 讀取並解析目錄檔
func (s *FileSource) Load(ctx context.Context) ([]common.Product, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Path)
		}
		return nil, fmt.Errorf("failed to read catalog %s: %w", s.Path, err)
	}

	var products []common.Product
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &products)
	default:
		err = common.ParseJSONBytes(data, &products)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	return products, nil
}

// HTTPSource 遠端 JSON 目錄
type HTTPSource struct {
	URL    string
	client *resty.Client
}

// NewHTTPSource 建立遠端目錄來源
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &HTTPSource{
		URL:    url,
		client: client,
	}
}

// Load 下載並解析目錄
func (s *HTTPSource) Load(ctx context.Context) ([]common.Product, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(s.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.URL)
	case resp.IsError():
		common.LogWarn("Catalog fetch returned error status",
			zap.String("url", s.URL),
			zap.Int("status", resp.StatusCode()),
		)
		return nil, fmt.Errorf("%w: unexpected status %d", ErrInvalidData, resp.StatusCode())
	}

	var products []common.Product
	if err := common.ParseJSONBytes(resp.Body(), &products); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	return products, nil
}

// validateProducts 每個產品都要有唯一且非空的 id
func validateProducts(products []common.Product) error {
	seen := make(map[string]struct{}, len(products))
	for i, p := range products {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("%w: product at index %d has empty id", ErrInvalidData, i)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate product id %q", ErrInvalidData, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// StaticSource 記憶體中的固定目錄
type StaticSource []common.Product

// Load 回傳固定目錄的複本
func (s StaticSource) Load(ctx context.Context) ([]common.Product, error) {
	products := make([]common.Product, len(s))
	copy(products, s)
	return products, nil
}
