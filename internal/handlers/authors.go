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

type AuthorHandler struct {
	db          *gorm.DB
	cfg         *config.Config
	authHandler *auth.AuthHandler
}

func NewAuthorHandler(db *gorm.DB, cfg *config.Config, authHandler *auth.AuthHandler) *AuthorHandler {
	return &AuthorHandler{db: db, cfg: cfg, authHandler: authHandler}
}

type AuthorResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	BookCount int64     `json:"book_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var authorOrderings = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

type ListAuthorsInput struct {
	Name           string    `query:"name" required:"false" doc:"Name contains, case-insensitive"`
	NameExact      string    `query:"name_exact" required:"false" doc:"Exact name match"`
	NameStartsWith string    `query:"name_starts_with" required:"false" doc:"Name prefix, case-insensitive"`
	HasBooks       string    `query:"has_books" required:"false" enum:"true,false" doc:"Authors with (true) or without (false) books"`
	MinBooks       int       `query:"min_books" required:"false" doc:"Authors with at least this many books"`
	CreatedAfter   time.Time `query:"created_after" required:"false"`
	CreatedBefore  time.Time `query:"created_before" required:"false"`
	Search         string    `query:"search" required:"false" doc:"Search over author names"`
	Ordering       string    `query:"ordering" required:"false" doc:"name, created_at; prefix with - for descending"`
	PageInput
}

type ListAuthorsOutput struct {
	Body Page[AuthorResponse]
}

func (h *AuthorHandler) HandleList(ctx context.Context, input *ListAuthorsInput) (*ListAuthorsOutput, error) {
	query := h.db.Model(&models.Author{})

	if input.Name != "" {
		query = query.Where("LOWER(authors.name) LIKE ?", likeContains(input.Name))
	}
	if input.NameExact != "" {
		query = query.Where("authors.name = ?", input.NameExact)
	}
	if input.NameStartsWith != "" {
		query = query.Where("LOWER(authors.name) LIKE ?", likePrefix(input.NameStartsWith))
	}
	switch input.HasBooks {
	case "true":
		query = query.Where("EXISTS (SELECT 1 FROM books WHERE books.author_id = authors.id AND books.deleted_at IS NULL)")
	case "false":
		query = query.Where("NOT EXISTS (SELECT 1 FROM books WHERE books.author_id = authors.id AND books.deleted_at IS NULL)")
	}
	if input.MinBooks > 0 {
		query = query.Where("(SELECT COUNT(*) FROM books WHERE books.author_id = authors.id AND books.deleted_at IS NULL) >= ?", input.MinBooks)
	}
	if !input.CreatedAfter.IsZero() {
		query = query.Where("authors.created_at >= ?", input.CreatedAfter)
	}
	if !input.CreatedBefore.IsZero() {
		query = query.Where("authors.created_at <= ?", input.CreatedBefore)
	}
	if input.Search != "" {
		query = query.Where("LOWER(authors.name) LIKE ?", likeContains(input.Search))
	}

	order := ordering(input.Ordering, "name", authorOrderings)
	page, err := paginate[models.Author](query, h.cfg, input.PageInput, order)
	if err != nil {
		return nil, err
	}

	out := Page[AuthorResponse]{Count: page.Count, Page: page.Page, PageSize: page.PageSize, Results: []AuthorResponse{}}
	for i := range page.Results {
		author := &page.Results[i]
		var count int64
		h.db.Model(&models.Book{}).Where("author_id = ?", author.ID).Count(&count)
		out.Results = append(out.Results, newAuthorResponse(author, count))
	}
	return &ListAuthorsOutput{Body: out}, nil
}

type CreateAuthorInput struct {
	auth.Credentials
	Body struct {
		Name string `json:"name" minLength:"1" doc:"Author name"`
	}
}

type AuthorOutput struct {
	Status int
	Body   AuthorResponse
}

func (h *AuthorHandler) HandleCreate(ctx context.Context, input *CreateAuthorInput) (*AuthorOutput, error) {
	if _, err := h.authHandler.Authorize(input.Credentials); err != nil {
		return nil, err
	}

	author := models.Author{Name: input.Body.Name}
	if err := author.Validate(); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	if err := h.db.Create(&author).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create author")
	}

	return &AuthorOutput{Status: 201, Body: newAuthorResponse(&author, 0)}, nil
}

type GetAuthorInput struct {
	ID uint `path:"id"`
}

func (h *AuthorHandler) HandleGet(ctx context.Context, input *GetAuthorInput) (*AuthorOutput, error) {
	author, count, err := h.findAuthor(input.ID)
	if err != nil {
		return nil, err
	}
	return &AuthorOutput{Status: 200, Body: newAuthorResponse(author, count)}, nil
}

type UpdateAuthorInput struct {
	auth.Credentials
	ID   uint `path:"id"`
	Body struct {
		Name string `json:"name" minLength:"1"`
	}
}

func (h *AuthorHandler) HandleUpdate(ctx context.Context, input *UpdateAuthorInput) (*AuthorOutput, error) {
	if _, err := h.authHandler.Authorize(input.Credentials); err != nil {
		return nil, err
	}

	author, count, err := h.findAuthor(input.ID)
	if err != nil {
		return nil, err
	}

	author.Name = input.Body.Name
	if err := author.Validate(); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	if err := h.db.Save(author).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update author")
	}

	return &AuthorOutput{Status: 200, Body: newAuthorResponse(author, count)}, nil
}

type DeleteAuthorInput struct {
	auth.Credentials
	ID uint `path:"id"`
}

func (h *AuthorHandler) HandleDelete(ctx context.Context, input *DeleteAuthorInput) (*struct{}, error) {
	if _, err := h.authHandler.Authorize(input.Credentials); err != nil {
		return nil, err
	}

	author, _, err := h.findAuthor(input.ID)
	if err != nil {
		return nil, err
	}
	if err := h.db.Delete(author).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to delete author")
	}
	return nil, nil
}

type AuthorBooksInput struct {
	ID uint `path:"id"`
}

type AuthorBooksOutput struct {
	Body struct {
		Author AuthorResponse `json:"author"`
		Books  []BookResponse `json:"books"`
	}
}

func (h *AuthorHandler) HandleBooks(ctx context.Context, input *AuthorBooksInput) (*AuthorBooksOutput, error) {
	author, count, err := h.findAuthor(input.ID)
	if err != nil {
		return nil, err
	}

	var books []models.Book
	if err := h.db.Where("author_id = ?", author.ID).Order("publication_year DESC").Find(&books).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to fetch books")
	}

	res := &AuthorBooksOutput{}
	res.Body.Author = newAuthorResponse(author, count)
	res.Body.Books = make([]BookResponse, 0, len(books))
	for i := range books {
		res.Body.Books = append(res.Body.Books, newBookResponse(&books[i], author.Name))
	}
	return res, nil
}

func (h *AuthorHandler) findAuthor(id uint) (*models.Author, int64, error) {
	var author models.Author
	if err := h.db.First(&author, id).Error; err != nil {
		return nil, 0, huma.Error404NotFound("Author not found")
	}
	var count int64
	h.db.Model(&models.Book{}).Where("author_id = ?", author.ID).Count(&count)
	return &author, count, nil
}

func newAuthorResponse(author *models.Author, bookCount int64) AuthorResponse {
	return AuthorResponse{
		ID:        author.ID,
		Name:      author.Name,
		BookCount: bookCount,
		CreatedAt: author.CreatedAt,
		UpdatedAt: author.UpdatedAt,
	}
}
