package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gatherhub/gather-api/internal/auth"
	"github.com/gatherhub/gather-api/internal/config"
	"github.com/gatherhub/gather-api/internal/models"
	"gorm.io/gorm"
)

// recentBookYears is the calendar window for the recent_books filter,
// recomputed against the request time.
const recentBookYears = 10

type BookHandler struct {
	db          *gorm.DB
	cfg         *config.Config
	authHandler *auth.AuthHandler
}

func NewBookHandler(db *gorm.DB, cfg *config.Config, authHandler *auth.AuthHandler) *BookHandler {
	return &BookHandler{db: db, cfg: cfg, authHandler: authHandler}
}

type BookResponse struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	PublicationYear int       `json:"publication_year"`
	AuthorID        *uint     `json:"author_id"`
	AuthorName      string    `json:"author_name,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

var bookOrderings = map[string]string{
	"title":            "books.title",
	"publication_year": "books.publication_year",
	"created_at":       "books.created_at",
}

type ListBooksInput struct {
	Title              string    `query:"title" required:"false" doc:"Title contains, case-insensitive"`
	TitleExact         string    `query:"title_exact" required:"false" doc:"Exact title match"`
	TitleStartsWith    string    `query:"title_starts_with" required:"false" doc:"Title prefix, case-insensitive"`
	TitleEndsWith      string    `query:"title_ends_with" required:"false" doc:"Title suffix, case-insensitive"`
	Author             uint      `query:"author" required:"false" doc:"Author ID"`
	AuthorName         string    `query:"author_name" required:"false" doc:"Author name contains, case-insensitive"`
	AuthorNameExact    string    `query:"author_name_exact" required:"false" doc:"Exact author name match"`
	PublicationYear    int       `query:"publication_year" required:"false" doc:"Exact publication year"`
	PublicationYearMin int       `query:"publication_year_min" required:"false" doc:"Published in or after this year"`
	PublicationYearMax int       `query:"publication_year_max" required:"false" doc:"Published in or before this year"`
	CreatedAfter       time.Time `query:"created_after" required:"false"`
	CreatedBefore      time.Time `query:"created_before" required:"false"`
	HasAuthor          string    `query:"has_author" required:"false" enum:"true,false" doc:"Books with (true) or without (false) an author"`
	RecentBooks        string    `query:"recent_books" required:"false" enum:"true,false" doc:"Books published within the last 10 years (true) or older (false)"`
	TitleLength        int       `query:"title_length" required:"false" doc:"Minimum title length in characters"`
	Search             string    `query:"search" required:"false" doc:"Search over title and author name"`
	Ordering           string    `query:"ordering" required:"false" doc:"title, publication_year, created_at; prefix with - for descending"`
	PageInput
}

type ListBooksOutput struct {
	Body Page[BookResponse]
}

// HandleList applies the declared filters AND-composed over the book
// collection, then paginates.
func (h *BookHandler) HandleList(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	query := h.db.Model(&models.Book{}).
		Joins("LEFT JOIN authors ON authors.id = books.author_id AND authors.deleted_at IS NULL").
		Preload("Author")

	if input.Title != "" {
		query = query.Where("LOWER(books.title) LIKE ?", likeContains(input.Title))
	}
	if input.TitleExact != "" {
		query = query.Where("books.title = ?", input.TitleExact)
	}
	if input.TitleStartsWith != "" {
		query = query.Where("LOWER(books.title) LIKE ?", likePrefix(input.TitleStartsWith))
	}
	if input.TitleEndsWith != "" {
		query = query.Where("LOWER(books.title) LIKE ?", likeSuffix(input.TitleEndsWith))
	}
	if input.Author != 0 {
		query = query.Where("books.author_id = ?", input.Author)
	}
	if input.AuthorName != "" {
		query = query.Where("LOWER(authors.name) LIKE ?", likeContains(input.AuthorName))
	}
	if input.AuthorNameExact != "" {
		query = query.Where("authors.name = ?", input.AuthorNameExact)
	}
	if input.PublicationYear != 0 {
		query = query.Where("books.publication_year = ?", input.PublicationYear)
	}
	if input.PublicationYearMin != 0 {
		query = query.Where("books.publication_year >= ?", input.PublicationYearMin)
	}
	if input.PublicationYearMax != 0 {
		query = query.Where("books.publication_year <= ?", input.PublicationYearMax)
	}
	if !input.CreatedAfter.IsZero() {
		query = query.Where("books.created_at >= ?", input.CreatedAfter)
	}
	if !input.CreatedBefore.IsZero() {
		query = query.Where("books.created_at <= ?", input.CreatedBefore)
	}
	switch input.HasAuthor {
	case "true":
		query = query.Where("books.author_id IS NOT NULL")
	case "false":
		query = query.Where("books.author_id IS NULL")
	}
	switch input.RecentBooks {
	case "true":
		query = query.Where("books.publication_year >= ?", time.Now().Year()-recentBookYears)
	case "false":
		query = query.Where("books.publication_year < ?", time.Now().Year()-recentBookYears)
	}
	if input.TitleLength > 0 {
		query = query.Where("LENGTH(books.title) >= ?", input.TitleLength)
	}
	if input.Search != "" {
		pattern := likeContains(input.Search)
		query = query.Where("LOWER(books.title) LIKE ? OR LOWER(authors.name) LIKE ?", pattern, pattern)
	}

	order := ordering(input.Ordering, "books.title", bookOrderings)
	page, err := paginate[models.Book](query, h.cfg, input.PageInput, order)
	if err != nil {
		return nil, err
	}

	out := Page[BookResponse]{Count: page.Count, Page: page.Page, PageSize: page.PageSize, Results: []BookResponse{}}
	for i := range page.Results {
		book := &page.Results[i]
		name := ""
		if book.Author != nil {
			name = book.Author.Name
		}
		out.Results = append(out.Results, newBookResponse(book, name))
	}
	return &ListBooksOutput{Body: out}, nil
}

type CreateBookInput struct {
	auth.Credentials
	Body struct {
		Title           string `json:"title" minLength:"1"`
		PublicationYear int    `json:"publication_year"`
		AuthorID        *uint  `json:"author_id,omitempty" required:"false"`
	}
}

type BookOutput struct {
	Status int
	Body   BookResponse
}

func (h *BookHandler) HandleCreate(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	if _, err := h.authHandler.Authorize(input.Credentials); err != nil {
		return nil, err
	}

	book := models.Book{
		Title:           input.Body.Title,
		PublicationYear: input.Body.PublicationYear,
		AuthorID:        input.Body.AuthorID,
	}
	if err := book.Validate(time.Now()); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	authorName := ""
	if book.AuthorID != nil {
		var author models.Author
		if err := h.db.First(&author, *book.AuthorID).Error; err != nil {
			return nil, huma.Error400BadRequest("Author does not exist")
		}
		authorName = author.Name
	}

	if err := h.db.Create(&book).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create book")
	}

	return &BookOutput{Status: 201, Body: newBookResponse(&book, authorName)}, nil
}

type GetBookInput struct {
	ID uint `path:"id"`
}

func (h *BookHandler) HandleGet(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	var book models.Book
	if err := h.db.Preload("Author").First(&book, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Book not found")
	}
	name := ""
	if book.Author != nil {
		name = book.Author.Name
	}
	return &BookOutput{Status: 200, Body: newBookResponse(&book, name)}, nil
}

type UpdateBookInput struct {
	auth.Credentials
	ID   uint `path:"id"`
	Body struct {
		Title           string `json:"title,omitempty" required:"false"`
		PublicationYear *int   `json:"publication_year,omitempty" required:"false"`
		AuthorID        *uint  `json:"author_id,omitempty" required:"false"`
	}
}

func (h *BookHandler) HandleUpdate(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	if _, err := h.authHandler.Authorize(input.Credentials); err != nil {
		return nil, err
	}

	var book models.Book
	if err := h.db.First(&book, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Book not found")
	}

	if input.Body.Title != "" {
		book.Title = input.Body.Title
	}
	if input.Body.PublicationYear != nil {
		book.PublicationYear = *input.Body.PublicationYear
	}
	if input.Body.AuthorID != nil {
		book.AuthorID = input.Body.AuthorID
	}
	if err := book.Validate(time.Now()); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	authorName := ""
	if book.AuthorID != nil {
		var author models.Author
		if err := h.db.First(&author, *book.AuthorID).Error; err != nil {
			return nil, huma.Error400BadRequest("Author does not exist")
		}
		authorName = author.Name
	}

	if err := h.db.Save(&book).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update book")
	}

	return &BookOutput{Status: 200, Body: newBookResponse(&book, authorName)}, nil
}

type DeleteBookInput struct {
	auth.Credentials
	ID uint `path:"id"`
}

func (h *BookHandler) HandleDelete(ctx context.Context, input *DeleteBookInput) (*struct{}, error) {
	if _, err := h.authHandler.Authorize(input.Credentials); err != nil {
		return nil, err
	}

	var book models.Book
	if err := h.db.First(&book, input.ID).Error; err != nil {
		return nil, huma.Error404NotFound("Book not found")
	}
	if err := h.db.Delete(&book).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to delete book")
	}
	return nil, nil
}

func newBookResponse(book *models.Book, authorName string) BookResponse {
	return BookResponse{
		ID:              book.ID,
		Title:           book.Title,
		PublicationYear: book.PublicationYear,
		AuthorID:        book.AuthorID,
		AuthorName:      authorName,
		CreatedAt:       book.CreatedAt,
		UpdatedAt:       book.UpdatedAt,
	}
}
