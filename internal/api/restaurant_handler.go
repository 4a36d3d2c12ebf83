package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"foodhub-be/internal/order"
	"foodhub-be/internal/restaurant"
	"foodhub-be/internal/utils"

	"github.com/gin-gonic/gin"
)

type RestaurantHandler struct {
	restaurants restaurant.Service
	orders      order.Service
}

func NewRestaurantHandler(restaurants restaurant.Service, orders order.Service) *RestaurantHandler {
	useJSONFieldNames()
	return &RestaurantHandler{restaurants: restaurants, orders: orders}
}

type restaurantForm struct {
	RestaurantName string `form:"restaurantName" binding:"required,max=100"`
	City           string `form:"city" binding:"required,max=100"`
	Country        string `form:"country" binding:"required,max=100"`
	DeliveryTime   int    `form:"deliveryTime" binding:"required,gt=0"`
	Cuisines       string `form:"cuisines" binding:"required"`
}

func (f restaurantForm) input() restaurant.Input {
	return restaurant.Input{
		Name:         f.RestaurantName,
		City:         f.City,
		Country:      f.Country,
		DeliveryTime: f.DeliveryTime,
		Cuisines:     parseList(f.Cuisines),
	}
}

type menuForm struct {
	Name        string `form:"name" binding:"required,max=100"`
	Description string `form:"description" binding:"required,max=500"`
	Price       int64  `form:"price" binding:"required,gt=0,max=10000000"`
}

type menuUpdateForm struct {
	Name        *string `form:"name" binding:"omitempty,max=100"`
	Description *string `form:"description" binding:"omitempty,max=500"`
	Price       *int64  `form:"price" binding:"omitempty,gt=0,max=10000000"`
}

type statusRequest struct {
	Status order.Status `json:"status" binding:"required"`
}

// parseList accepts a JSON array or a comma separated string.
func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "[") {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err == nil {
			return out
		}
	}
	return utils.SplitCSV(raw)
}

func (h *RestaurantHandler) Create(c *gin.Context) {
	ownerID, err := currentUser(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var form restaurantForm
	if err := c.ShouldBind(&form); err != nil {
		bindError(c, err)
		return
	}

	image, closeFile, err := formImage(c, "imageFile")
	if err != nil {
		writeError(c, err)
		return
	}
	defer closeFile()

	r, err := h.restaurants.Create(c.Request.Context(), ownerID, form.input(), image)
	if err != nil {
		writeError(c, err)
		return
	}

	ok(c, http.StatusCreated, gin.H{"message": "Restaurant added", "restaurant": r})
}

func (h *RestaurantHandler) Mine(c *gin.Context) {
	ownerID, err := currentUser(c)
	if err != nil {
		writeError(c, err)
		return
	}

	r, err := h.restaurants.GetByOwner(c.Request.Context(), ownerID)
	if err != nil {
		writeError(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{"data": r})
}

func (h *RestaurantHandler) Update(c *gin.Context) {
	ownerID, err := currentUser(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var form restaurantForm
	if err := c.ShouldBind(&form); err != nil {
		bindError(c, err)
		return
	}

	image, closeFile, err := formImage(c, "imageFile")
	if err != nil {
		writeError(c, err)
		return
	}
	defer closeFile()

	r, err := h.restaurants.Update(c.Request.Context(), ownerID, form.input(), image)
	if err != nil {
		writeError(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{"message": "Restaurant updated success", "restaurant": r})
}

func (h *RestaurantHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	r, err := h.restaurants.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{"data": r})
}

func (h *RestaurantHandler) Search(c *gin.Context) {
	p := restaurant.SearchParams{
		SearchText:  c.Param("searchText"),
		SearchQuery: c.Query("searchQuery"),
		Cuisines:    parseList(c.Query("selectedCuisines")),
	}

	list, err := h.restaurants.Search(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		list = []restaurant.Restaurant{}
	}

	ok(c, http.StatusOK, gin.H{"data": list})
}

func (h *RestaurantHandler) Orders(c *gin.Context) {
	ownerID, err := currentUser(c)
	if err != nil {
		writeError(c, err)
		return
	}

	list, err := h.orders.ListOrdersForRestaurant(c.Request.Context(), ownerID)
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		list = []order.Order{}
	}

	ok(c, http.StatusOK, gin.H{"data": list})
}

func (h *RestaurantHandler) UpdateOrderStatus(c *gin.Context) {
	ownerID, err := currentUser(c)
	if err != nil {
		writeError(c, err)
		return
	}

	orderID, err := pathID(c, "orderId")
	if err != nil {
		writeError(c, err)
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), ownerID, orderID, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{
		"status":  o.Status,
		"message": "Order is updated successfully",
	})
}

func (h *RestaurantHandler) AddMenu(c *gin.Context) {
	ownerID, err := currentUser(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var form menuForm
	if err := c.ShouldBind(&form); err != nil {
		bindError(c, err)
		return
	}

	image, closeFile, err := formImage(c, "image")
	if err != nil {
		writeError(c, err)
		return
	}
	defer closeFile()

	m, err := h.restaurants.AddMenu(c.Request.Context(), ownerID, restaurant.MenuInput{
		Name:        form.Name,
		Description: form.Description,
		Price:       form.Price,
	}, image)
	if err != nil {
		writeError(c, err)
		return
	}

	ok(c, http.StatusCreated, gin.H{"message": "Menu added successfully", "menu": m})
}

func (h *RestaurantHandler) EditMenu(c *gin.Context) {
	ownerID, err := currentUser(c)
	if err != nil {
		writeError(c, err)
		return
	}

	menuID, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	var form menuUpdateForm
	if err := c.ShouldBind(&form); err != nil {
		bindError(c, err)
		return
	}

	image, closeFile, err := formImage(c, "image")
	if err != nil {
		writeError(c, err)
		return
	}
	defer closeFile()

	m, err := h.restaurants.EditMenu(c.Request.Context(), ownerID, menuID, restaurant.MenuUpdate{
		Name:        form.Name,
		Description: form.Description,
		Price:       form.Price,
	}, image)
	if err != nil {
		writeError(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{"message": "Menu updated", "menu": m})
}
