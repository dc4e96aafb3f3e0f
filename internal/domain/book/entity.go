package book

import (
	"strings"
	"time"
)

// Book 图书实体(聚合根)
// Quantity是当前可借副本数,也是"能否借出"的唯一依据,永远>=0
// 借还引起的增减只走Ledger的原子操作,不通过Update整行覆盖
type Book struct {
	ID          uint
	ISBN        string
	Title       string
	Author      string
	Category    string
	Quantity    int
	Publisher   string
	Description string
	AddedBy     uint // 录入图书的馆员ID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBook 创建新图书(工厂方法)
func NewBook(isbn, title, author, category string, quantity int, publisher, description string, addedBy uint) *Book {
	now := time.Now()
	return &Book{
		ISBN:        strings.TrimSpace(isbn),
		Title:       strings.TrimSpace(title),
		Author:      strings.TrimSpace(author),
		Category:    strings.TrimSpace(category),
		Quantity:    quantity,
		Publisher:   publisher,
		Description: description,
		AddedBy:     addedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsAvailable 是否有可借副本
func (b *Book) IsAvailable() bool {
	return b.Quantity > 0
}

// Info 可修改的图书信息,空字段表示不修改
type Info struct {
	Title       string
	Author      string
	Category    string
	Publisher   string
	Description string
}

// UpdateInfo 更新图书基本信息(不含库存)
func (b *Book) UpdateInfo(info Info) {
	if info.Title != "" {
		b.Title = info.Title
	}
	if info.Author != "" {
		b.Author = info.Author
	}
	if info.Category != "" {
		b.Category = info.Category
	}
	if info.Publisher != "" {
		b.Publisher = info.Publisher
	}
	if info.Description != "" {
		b.Description = info.Description
	}
	b.UpdatedAt = time.Now()
}
