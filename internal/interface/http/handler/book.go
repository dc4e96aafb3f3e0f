package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/librarydesk/internal/application/book"
	"github.com/xiebiao/librarydesk/internal/interface/http/dto"
	"github.com/xiebiao/librarydesk/internal/interface/http/middleware"
	"github.com/xiebiao/librarydesk/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	addBookUseCase     *appbook.AddBookUseCase
	getBookUseCase     *appbook.GetBookUseCase
	listBooksUseCase   *appbook.ListBooksUseCase
	updateBookUseCase  *appbook.UpdateBookUseCase
	deleteBookUseCase  *appbook.DeleteBookUseCase
	restockBookUseCase *appbook.RestockBookUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	addBookUseCase *appbook.AddBookUseCase,
	getBookUseCase *appbook.GetBookUseCase,
	listBooksUseCase *appbook.ListBooksUseCase,
	updateBookUseCase *appbook.UpdateBookUseCase,
	deleteBookUseCase *appbook.DeleteBookUseCase,
	restockBookUseCase *appbook.RestockBookUseCase,
) *BookHandler {
	return &BookHandler{
		addBookUseCase:     addBookUseCase,
		getBookUseCase:     getBookUseCase,
		listBooksUseCase:   listBooksUseCase,
		updateBookUseCase:  updateBookUseCase,
		deleteBookUseCase:  deleteBookUseCase,
		restockBookUseCase: restockBookUseCase,
	}
}

// AddBook 录入图书
// @Summary      录入图书
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=appbook.BookResponse}
// @Failure      400 {object} response.Response "40004 ISBN已存在 / 40900 参数错误"
// @Router       /api/v1/books [post]
func (h *BookHandler) AddBook(c *gin.Context) {
	var req dto.AddBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.addBookUseCase.Execute(c.Request.Context(), appbook.AddBookRequest{
		ISBN:        req.ISBN,
		Title:       req.Title,
		Author:      req.Author,
		Category:    req.Category,
		Quantity:    req.Quantity,
		Publisher:   req.Publisher,
		Description: req.Description,
		AddedBy:     middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListBooks 图书列表
// @Summary      图书列表
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int    false "页码"
// @Param        page_size query int    false "每页数量"
// @Param        keyword   query string false "书名、作者或ISBN"
// @Param        category  query string false "分类"
// @Param        sort_by   query string false "title_asc | created_at_desc | quantity_desc"
// @Success      200 {object} response.Response{data=appbook.ListBooksResponse}
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.listBooksUseCase.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		Category: req.Category,
		SortBy:   req.SortBy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookResponse}
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.getBookUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateBook 修改图书信息
// @Summary      修改图书信息
// @Description  不修改库存,库存通过借还和盘点变化
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                   true "图书ID"
// @Param        request body dto.UpdateBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=appbook.BookResponse}
// @Router       /api/v1/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.updateBookUseCase.Execute(c.Request.Context(), appbook.UpdateBookRequest{
		ID:          id,
		Title:       req.Title,
		Author:      req.Author,
		Category:    req.Category,
		Publisher:   req.Publisher,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "40006 仍有未归还的借阅"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.deleteBookUseCase.Execute(c.Request.Context(), id, middleware.MustGetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// RestockBook 盘点调整库存
// @Summary      盘点调整库存
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                true "图书ID"
// @Param        request body dto.RestockRequest true "调整量"
// @Success      200 {object} response.Response{data=appbook.BookResponse}
// @Failure      400 {object} response.Response "40001 调整后库存为负"
// @Router       /api/v1/books/{id}/restock [post]
func (h *BookHandler) RestockBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.restockBookUseCase.Execute(c.Request.Context(), appbook.RestockBookRequest{
		BookID:     id,
		Delta:      req.Delta,
		OperatorID: middleware.MustGetUserID(c),
		Reason:     req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
