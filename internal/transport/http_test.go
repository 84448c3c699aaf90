package transport_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/vasiliy-maslov/footwear-shop/internal/apperror"
	"github.com/vasiliy-maslov/footwear-shop/internal/cart"
	"github.com/vasiliy-maslov/footwear-shop/internal/notify"
	"github.com/vasiliy-maslov/footwear-shop/internal/order"
	"github.com/vasiliy-maslov/footwear-shop/internal/rating"
	"github.com/vasiliy-maslov/footwear-shop/internal/shoe"
	"github.com/vasiliy-maslov/footwear-shop/internal/storage/memory"
	"github.com/vasiliy-maslov/footwear-shop/internal/transport"
	"github.com/vasiliy-maslov/footwear-shop/internal/user"
)

type envelope struct {
	Success     bool                  `json:"success"`
	Message     string                `json:"message"`
	Data        json.RawMessage       `json:"data"`
	Errors      []apperror.FieldError `json:"errors"`
	Count       int                   `json:"count"`
	Total       int                   `json:"total"`
	Pages       int                   `json:"pages"`
	CurrentPage int                   `json:"currentPage"`
}

type APISuite struct {
	suite.Suite
	server *httptest.Server
	hub    *notify.Hub
}

func (s *APISuite) SetupTest() {
	store := memory.NewStore()
	tokens := user.NewTokens("test-secret", time.Hour)
	s.hub = notify.NewHub()

	router := transport.NewRouter(transport.Services{
		Shoes:   shoe.NewService(store.Shoes),
		Ratings: rating.NewService(store.Ratings),
		Carts:   cart.NewService(store.Carts, store.Shoes),
		Orders:  order.NewService(store.Orders, store.Carts, order.WithPublisher(s.hub)),
		Users:   user.NewService(store.Users, tokens),
		Tokens:  tokens,
		Events:  s.hub,
	}, []string{"*"})
	s.server = httptest.NewServer(router)
}

func (s *APISuite) TearDownTest() {
	s.hub.Close()
	s.server.Close()
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) do(method, path string, body any, header ...string) (int, envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var env envelope
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (s *APISuite) decode(raw json.RawMessage, dst any) {
	s.Require().NoError(json.Unmarshal(raw, dst))
}

func (s *APISuite) createShoe() shoe.Shoe {
	code, env := s.do(http.MethodPost, "/api/shoes/add", map[string]any{
		"name":     "Air Runner",
		"brand":    "Stride",
		"category": "men",
		"image":    "https://cdn.example.com/air-runner.png",
		"size":     []string{"9", "10"},
		"color":    []string{"black"},
		"price":    1200,
		"stock":    50,
	})
	s.Require().Equal(http.StatusCreated, code, env.Message)
	var created shoe.Shoe
	s.decode(env.Data, &created)
	return created
}

func (s *APISuite) TestCheckoutEmptiesCart() {
	created := s.createShoe()
	userID := uuid.Must(uuid.NewV4())

	code, env := s.do(http.MethodPost, "/api/cart/add", map[string]any{
		"userId":    userID.String(),
		"productId": created.ID.String(),
		"size":      "9",
		"quantity":  1,
	})
	s.Require().Equal(http.StatusOK, code, env.Message)

	code, env = s.do(http.MethodGet, "/api/cart/user/"+userID.String(), nil)
	s.Require().Equal(http.StatusOK, code)
	var items []cart.Item
	s.decode(env.Data, &items)
	s.Require().Len(items, 1)
	s.Equal(1, items[0].Quantity)
	s.Equal(1200.0, items[0].Price)

	code, env = s.do(http.MethodPost, "/api/orders/create", map[string]any{
		"userId": userID.String(),
		"items": []map[string]any{{
			"shoeId":   created.ID.String(),
			"name":     items[0].Name,
			"brand":    items[0].Brand,
			"price":    items[0].Price,
			"image":    items[0].Image,
			"quantity": items[0].Quantity,
			"size":     items[0].Size,
		}},
		"shippingAddress": map[string]string{
			"fullName": "Sam Doe", "phone": "+15550100", "street": "1 Main St",
			"city": "Springfield", "state": "IL", "zipCode": "62701",
		},
		"subtotal":    1200,
		"totalAmount": 1200,
	})
	s.Require().Equal(http.StatusCreated, code, env.Message)
	var placed order.Order
	s.decode(env.Data, &placed)
	s.Equal(order.StatusPending, placed.Status)
	s.Equal(order.DefaultPaymentMethod, placed.PaymentMethod)
	s.WithinDuration(placed.OrderDate.Add(7*24*time.Hour), placed.EstimatedDelivery, time.Minute)

	code, env = s.do(http.MethodGet, "/api/cart/user/"+userID.String(), nil)
	s.Require().Equal(http.StatusOK, code)
	items = nil
	s.decode(env.Data, &items)
	s.Empty(items)

	code, env = s.do(http.MethodPut, "/api/orders/"+placed.ID.String()+"/status", map[string]any{"orderStatus": "shipped"})
	s.Require().Equal(http.StatusOK, code, env.Message)

	code, env = s.do(http.MethodPut, "/api/orders/"+placed.ID.String()+"/cancel", nil)
	s.Equal(http.StatusBadRequest, code)
	s.False(env.Success)
	s.Equal("Cannot cancel order that is not pending", env.Message)
}

func (s *APISuite) TestListPagination() {
	for i := 0; i < 12; i++ {
		s.createShoe()
	}

	code, env := s.do(http.MethodGet, "/api/shoes?page=2&limit=5&sort=-price", nil)
	s.Require().Equal(http.StatusOK, code)
	s.Equal(5, env.Count)
	s.Equal(12, env.Total)
	s.Equal(3, env.Pages)
	s.Equal(2, env.CurrentPage)

	code, env = s.do(http.MethodGet, "/api/shoes?price=cheap", nil)
	s.Equal(http.StatusBadRequest, code)
	s.Require().Len(env.Errors, 1)
	s.Equal("price", env.Errors[0].Field)
}

func (s *APISuite) TestListPagingWithHugeValues() {
	created := s.createShoe()

	code, env := s.do(http.MethodGet, "/api/shoes?page=2&limit=9223372036854775807", nil)
	s.Require().Equal(http.StatusOK, code)
	s.Equal(0, env.Count)
	s.Equal(1, env.Total)
	s.Equal(1, env.Pages)

	code, env = s.do(http.MethodGet, "/api/shoes?page=9223372036854775807&limit=10", nil)
	s.Require().Equal(http.StatusOK, code)
	var items []shoe.Shoe
	s.decode(env.Data, &items)
	s.Empty(items)
	s.Equal(1, env.Total)

	code, env = s.do(http.MethodGet, "/api/shoes?page=1&limit=9223372036854775807", nil)
	s.Require().Equal(http.StatusOK, code)
	items = nil
	s.decode(env.Data, &items)
	s.Require().Len(items, 1)
	s.Equal(created.ID, items[0].ID)
}

func (s *APISuite) TestShoeValidationListsEveryField() {
	code, env := s.do(http.MethodPost, "/api/shoes", map[string]any{
		"name":     "Runner",
		"brand":    "Stride",
		"category": "pets",
		"image":    "ftp://nope",
		"price":    10,
	})
	s.Require().Equal(http.StatusBadRequest, code)

	fields := make([]string, 0, len(env.Errors))
	for _, fe := range env.Errors {
		fields = append(fields, fe.Field)
	}
	s.ElementsMatch([]string{"category", "image", "sizes", "colors"}, fields)
}

func (s *APISuite) TestMalformedIDsAreRejected() {
	code, _ := s.do(http.MethodGet, "/api/shoes/not-a-uuid", nil)
	s.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodGet, "/api/shoes/"+uuid.Must(uuid.NewV4()).String(), nil)
	s.Equal(http.StatusNotFound, code)

	code, env := s.do(http.MethodPost, "/api/cart/add", map[string]any{"userId": "x", "shoeId": "y", "size": "9"})
	s.Equal(http.StatusBadRequest, code)
	s.Len(env.Errors, 2)
}

func (s *APISuite) TestRatingFlow() {
	shoeID := uuid.Must(uuid.NewV4()).String()
	userID := uuid.Must(uuid.NewV4()).String()

	code, env := s.do(http.MethodPost, "/api/rating/"+shoeID, map[string]any{"userId": userID, "rating": 3})
	s.Equal(http.StatusCreated, code)
	s.Equal("Rating submitted", env.Message)

	code, env = s.do(http.MethodPost, "/api/rating/"+shoeID, map[string]any{"userId": userID, "rating": 5})
	s.Equal(http.StatusOK, code)
	s.Equal("Rating updated", env.Message)

	code, _ = s.do(http.MethodPost, "/api/rating/"+shoeID, map[string]any{"userId": userID, "rating": 4.5})
	s.Equal(http.StatusBadRequest, code)

	_, env = s.do(http.MethodGet, "/api/rating/average/"+shoeID, nil)
	var avg rating.Average
	s.decode(env.Data, &avg)
	s.Equal(rating.Average{AverageRating: 5, TotalRatings: 1}, avg)

	_, env = s.do(http.MethodGet, "/api/rating/user/"+shoeID+"/"+uuid.Must(uuid.NewV4()).String(), nil)
	s.JSONEq(`{"rating":null}`, string(env.Data))
}

func (s *APISuite) TestRegisterLoginProfile() {
	code, env := s.do(http.MethodPost, "/api/register", map[string]string{
		"fullName": "Sam Doe", "phone": "+15550100", "email": "Sam@Example.com",
		"password": "secret1", "confirmPassword": "secret1",
	})
	s.Require().Equal(http.StatusCreated, code, env.Message)

	code, env = s.do(http.MethodPost, "/api/register", map[string]string{
		"fullName": "Sam Doe", "phone": "+15550100", "email": "sam@example.com",
		"password": "secret1", "confirmPassword": "secret1",
	})
	s.Equal(http.StatusBadRequest, code)
	s.Equal("User already exists", env.Message)

	code, env = s.do(http.MethodPost, "/api/login", map[string]string{"email": "sam@example.com", "password": "wrong!"})
	s.Equal(http.StatusBadRequest, code)
	s.Equal("Invalid credentials", env.Message)

	code, env = s.do(http.MethodPost, "/api/login", map[string]string{"email": "sam@example.com", "password": "secret1"})
	s.Require().Equal(http.StatusOK, code)
	var session user.Session
	s.decode(env.Data, &session)
	s.NotEmpty(session.Token)

	code, _ = s.do(http.MethodGet, "/api/me", nil)
	s.Equal(http.StatusUnauthorized, code)

	code, env = s.do(http.MethodGet, "/api/me", nil, "Authorization", "Bearer "+session.Token)
	s.Require().Equal(http.StatusOK, code)
	var profile user.User
	s.decode(env.Data, &profile)
	s.Equal("sam@example.com", profile.Email)
}

func (s *APISuite) TestHealthAndStatus() {
	resp, err := s.server.Client().Get(s.server.URL + "/health")
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, err = s.server.Client().Get(s.server.URL + "/api/status")
	s.Require().NoError(err)
	defer resp.Body.Close()
	var body map[string]string
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Equal("running", body["status"])
}
