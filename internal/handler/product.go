package handler

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/arunprasath/shopcart/internal/model"
	"github.com/arunprasath/shopcart/internal/repository"
	"github.com/arunprasath/shopcart/internal/storage"
)

const relatedLimit = 10

// ProductHandler serves the public catalog, the embedded review
// endpoints and the admin product CRUD.
type ProductHandler struct {
	Products repository.ProductStore
	Uploads  *storage.Store
}

func NewProductHandler(products repository.ProductStore, uploads *storage.Store) *ProductHandler {
	return &ProductHandler{Products: products, Uploads: uploads}
}

// List is the storefront listing: filter, sort and paginate in one
// round trip, with the aggregate metadata (counts, price bounds, global
// category list) the UI renders around the grid.
//
// Query params: name, category (comma separated), ratings, price
// ("min,max"), ordeyByPrice, ordeyByName, page, limit. The misspelled
// sort params are kept as-is for client compatibility.
func (h *ProductHandler) List(c echo.Context) error {
	q, err := parseSearchQuery(c)
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Products.Search(ctx, q)
	if err != nil {
		return err
	}

	count := res.FilteredCount
	if res.FilteredCount == res.TotalCount {
		count = res.TotalCount
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"count":      count,
		"resPerPage": q.Limit,
		"minPrice":   res.MinPrice,
		"maxPrice":   res.MaxPrice,
		"categories": res.Categories,
		"products":   res.Products,
	})
}

// Get returns one product plus up to ten others from the same category.
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := objectIDParam(c.Param("id"))
	if err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid product id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	product, err := h.Products.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(c, err, http.StatusNotFound, "Product Not Found")
	}
	related, err := h.Products.Related(ctx, product.Category, product.ID, relatedLimit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":         true,
		"product":         product,
		"relatedProducts": related,
	})
}

// ----- admin product CRUD -----

func (h *ProductHandler) AdminList(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	products, err := h.Products.All(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "products": products})
}

// Create accepts a multipart form with the product fields plus any
// number of image files under "images".
func (h *ProductHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return apiError(c, http.StatusUnauthorized, "Unauthorized")
	}

	product := &model.Product{User: uid}
	if err := h.bindProductForm(c, product); err != nil {
		return err
	}
	if product.Name == "" || product.Price <= 0 {
		return apiError(c, http.StatusBadRequest, "Product name and a positive price are required")
	}

	images, err := h.saveImages(c)
	if err != nil {
		return err
	}
	product.Images = images

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Products.Create(ctx, product); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "product": product})
}

// Update merges the submitted fields into the product. When the client
// sends imagesCleared != "false" the existing image files are removed
// from disk and replaced by whatever was uploaded.
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := objectIDParam(c.Param("id"))
	if err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid product id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	product, err := h.Products.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(c, err, http.StatusNotFound, "Product Not Found")
	}

	// Validate the form before touching anything on disk so a rejected
	// update leaves the existing image files intact.
	if err := h.bindProductForm(c, product); err != nil {
		return err
	}

	images := product.Images
	if c.FormValue("imagesCleared") != "false" {
		for _, img := range product.Images {
			if err := h.Uploads.DeleteByURL(img.Image, storage.ProductDir); err != nil {
				log.Printf("product: delete image: %v", err)
			}
		}
		images = nil
	}
	uploaded, err := h.saveImages(c)
	if err != nil {
		return err
	}
	product.Images = append(images, uploaded...)

	if err := h.Products.Save(ctx, product); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "product": product})
}

// Delete removes the product and its image files.
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := objectIDParam(c.Param("id"))
	if err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid product id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	product, err := h.Products.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(c, err, http.StatusNotFound, "Product Not Found")
	}
	for _, img := range product.Images {
		if err := h.Uploads.DeleteByURL(img.Image, storage.ProductDir); err != nil {
			log.Printf("product: delete image: %v", err)
		}
	}
	if err := h.Products.Delete(ctx, id); err != nil {
		return notFoundOr(c, err, http.StatusNotFound, "Product Not Found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Product Deleted !"})
}

// ----- reviews -----

type createReviewReq struct {
	ProductID string `json:"productId" validate:"required"`
	Rating    string `json:"rating" validate:"required"`
	Comment   string `json:"comment"`
}

// CreateReview records or replaces the caller's review of a product and
// recomputes the running average rating. Ratings arrive as strings and
// must parse to a number in [0, 5] before anything is stored; the model
// keeps its zero-on-unparsable fallback for documents that predate this
// check.
func (h *ProductHandler) CreateReview(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return apiError(c, http.StatusUnauthorized, "Unauthorized")
	}
	var req createReviewReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if rating, err := strconv.ParseFloat(req.Rating, 64); err != nil || rating < 0 || rating > 5 {
		return apiError(c, http.StatusBadRequest, "Rating must be a number between 0 and 5")
	}
	pid, err := objectIDParam(req.ProductID)
	if err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid product id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	product, err := h.Products.GetByID(ctx, pid)
	if err != nil {
		return notFoundOr(c, err, http.StatusNotFound, "Product Not Found")
	}
	product.UpsertReview(uid, req.Rating, req.Comment)
	if err := h.Products.Save(ctx, product); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Reviews lists a product's reviews, product id in the "id" query param.
func (h *ProductHandler) Reviews(c echo.Context) error {
	pid, err := objectIDParam(c.QueryParam("id"))
	if err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid product id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	product, err := h.Products.GetByID(ctx, pid)
	if err != nil {
		return notFoundOr(c, err, http.StatusNotFound, "Product Not Found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "reviews": product.Reviews})
}

// DeleteReview removes a single review ("productId" and "id" query
// params) and recomputes the aggregates; an empty review list zeroes
// the rating.
func (h *ProductHandler) DeleteReview(c echo.Context) error {
	pid, err := objectIDParam(c.QueryParam("productId"))
	if err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid product id")
	}
	rid, err := objectIDParam(c.QueryParam("id"))
	if err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid review id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	product, err := h.Products.GetByID(ctx, pid)
	if err != nil {
		return notFoundOr(c, err, http.StatusNotFound, "Product Not Found")
	}
	product.RemoveReview(rid)
	if err := h.Products.Save(ctx, product); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// ----- helpers -----

// parseSearchQuery validates the listing params. Malformed numeric
// filters are rejected with a 400 instead of being forwarded as NaN
// range bounds.
func parseSearchQuery(c echo.Context) (repository.SearchQuery, error) {
	q := repository.SearchQuery{
		Name:         c.QueryParam("name"),
		OrderByPrice: c.QueryParam("ordeyByPrice"),
		OrderByName:  c.QueryParam("ordeyByName"),
	}

	if raw := c.QueryParam("category"); raw != "" {
		for _, cat := range strings.Split(raw, ",") {
			if cat = strings.TrimSpace(cat); cat != "" {
				q.Categories = append(q.Categories, cat)
			}
		}
	}
	if raw := c.QueryParam("ratings"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, apiError(c, http.StatusBadRequest, "Invalid ratings filter")
		}
		q.MinRating = &v
	}
	if raw := c.QueryParam("price"); raw != "" {
		parts := strings.Split(raw, ",")
		if len(parts) != 2 {
			return q, apiError(c, http.StatusBadRequest, "Invalid price filter")
		}
		lo, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		hi, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err1 != nil || err2 != nil {
			return q, apiError(c, http.StatusBadRequest, "Invalid price filter")
		}
		q.PriceMin, q.PriceMax = &lo, &hi
	}
	if raw := c.QueryParam("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return q, apiError(c, http.StatusBadRequest, "Invalid page")
		}
		q.Page = v
	}
	if raw := c.QueryParam("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return q, apiError(c, http.StatusBadRequest, "Invalid limit")
		}
		q.Limit = v
	}

	q.Normalize()
	return q, nil
}

// bindProductForm merges non-empty form fields into the product.
func (h *ProductHandler) bindProductForm(c echo.Context, p *model.Product) error {
	if v := c.FormValue("name"); v != "" {
		if len(v) > 100 {
			return apiError(c, http.StatusBadRequest, "Product name cannot exceed 100 characters")
		}
		p.Name = v
	}
	if v := c.FormValue("description"); v != "" {
		p.Description = v
	}
	if v := c.FormValue("seller"); v != "" {
		p.Seller = v
	}
	if v := c.FormValue("category"); v != "" {
		if !model.ValidCategory(v) {
			return apiError(c, http.StatusBadRequest, "Please select correct category")
		}
		p.Category = v
	}
	if v := c.FormValue("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < 0 {
			return apiError(c, http.StatusBadRequest, "Invalid price")
		}
		p.Price = price
	}
	if v := c.FormValue("stock"); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil || stock < 0 || stock > 50 {
			return apiError(c, http.StatusBadRequest, "Invalid stock")
		}
		p.Stock = stock
	}
	return nil
}

// saveImages stores every uploaded "images" file and returns their URLs.
func (h *ProductHandler) saveImages(c echo.Context) ([]model.ProductImage, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}
	var images []model.ProductImage
	for _, fh := range form.File["images"] {
		url, err := h.Uploads.Save(fh, storage.ProductDir)
		if err != nil {
			return nil, err
		}
		images = append(images, model.ProductImage{Image: url})
	}
	return images, nil
}
