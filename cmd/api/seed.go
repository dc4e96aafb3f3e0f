package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xiebiao/librarydesk/internal/domain/book"
	"github.com/xiebiao/librarydesk/internal/infrastructure/persistence/rdb"
)

func newSeedCmd(configFile *string) *cobra.Command {
	var (
		file    string
		addedBy uint
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "从CSV导入图书",
		Long:  "CSV表头: isbn,title,author,category,quantity[,publisher,description]\n已存在的ISBN会被跳过",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*configFile)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("打开CSV失败: %w", err)
			}
			defer f.Close()

			db, cleanup, err := provideDB(cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			svc := provideBookService(rdb.NewBookRepository(db), rdb.NewTransactionRepository(db), rdb.NewTxManager(db))
			result, err := importBooks(cmd.Context(), f, svc, addedBy, log)
			if err != nil {
				return err
			}
			log.Info("图书导入完成",
				zap.Int("imported", result.Imported),
				zap.Int("skipped", result.Skipped),
				zap.Int("failed", result.Failed))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV文件路径")
	cmd.Flags().UintVar(&addedBy, "added-by", 0, "记录为录入人的用户ID")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

type importResult struct {
	Imported int
	Skipped  int // ISBN已存在
	Failed   int // 字段不合法
}

var requiredColumns = []string{"isbn", "title", "author", "category", "quantity"}

// importBooks 逐行录入,单行失败只记日志不中断
func importBooks(ctx context.Context, r io.Reader, svc book.Service, addedBy uint, log *zap.Logger) (importResult, error) {
	var result importResult

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return result, fmt.Errorf("读取CSV表头失败: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return result, fmt.Errorf("CSV缺少列: %s", name)
		}
	}

	field := func(rec []string, name string) string {
		if i, ok := col[name]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	// 表头占第1行
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("第%d行解析失败: %w", line, err)
		}

		quantity, err := strconv.Atoi(field(rec, "quantity"))
		if err != nil {
			log.Warn("库存不是整数,跳过", zap.Int("line", line), zap.String("quantity", field(rec, "quantity")))
			result.Failed++
			continue
		}

		b := book.NewBook(field(rec, "isbn"), field(rec, "title"), field(rec, "author"), field(rec, "category"),
			quantity, field(rec, "publisher"), field(rec, "description"), addedBy)
		if _, err := svc.AddBook(ctx, b); err != nil {
			if errors.Is(err, book.ErrISBNDuplicate) {
				result.Skipped++
				continue
			}
			if !errors.Is(err, book.ErrInvalidISBN) && !errors.Is(err, book.ErrMissingField) && !errors.Is(err, book.ErrInvalidQuantity) {
				return result, err
			}
			log.Warn("图书字段不合法,跳过", zap.Int("line", line), zap.String("isbn", b.ISBN), zap.Error(err))
			result.Failed++
			continue
		}
		result.Imported++
	}
	return result, nil
}
