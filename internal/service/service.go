package service

import (
	"context"

	"go.uber.org/zap"

	"lotus/config"
	"lotus/internal/cache"
	"lotus/internal/domain"
	"lotus/internal/events"
	"lotus/internal/repository"
	"lotus/internal/storage"
)

type Deps struct {
	Repos       *repository.Repositories
	Logger      *zap.Logger
	Config      *config.Config
	FileStorage storage.FileStorage
	Cache       *cache.Cache
	Events      events.Publisher
}

type Services struct {
	User        UserService
	Auth        AuthService
	Catalog     CatalogService
	Booking     BookingService
	Appointment AppointmentService
	Promotion   PromotionService
	Wallet      WalletService
	Course      CourseService
	Review      ReviewService
	Payment     PaymentService
}

func NewServices(deps Deps) *Services {
	wallet := NewWalletService(deps.Repos.Wallet, deps.Config.Loyalty, deps.Events, deps.Logger)

	return &Services{
		User:        NewUserService(deps.Repos.User, deps.Logger),
		Auth:        NewAuthService(deps.Repos.Auth, deps.Repos.User, deps.Config.JWT, deps.Logger),
		Catalog:     NewCatalogService(deps.Repos.Catalog, deps.FileStorage, deps.Cache, deps.Logger),
		Booking:     NewBookingService(deps.Repos.Appointment, deps.Config.Booking, deps.Logger),
		Appointment: NewAppointmentService(deps.Repos.Appointment, deps.Repos.Catalog, deps.Config.Booking, deps.Events, deps.Logger),
		Promotion:   NewPromotionService(deps.Repos.Promotion, deps.Repos.User, deps.Repos.Appointment, deps.Repos.Catalog, deps.Repos.Wallet, deps.Events, deps.Logger),
		Wallet:      wallet,
		Course:      NewCourseService(deps.Repos.Course, deps.Events, deps.Logger),
		Review:      NewReviewService(deps.Repos.Review, deps.Repos.Appointment, deps.Logger),
		Payment:     NewPaymentService(deps.Repos.Payment, deps.Repos.Appointment, wallet, deps.Config.Stripe, deps.Events, deps.Logger),
	}
}

type UserService interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, id int64, dto domain.UpdateUserDTO) error
	UpdatePassword(ctx context.Context, id int64, dto domain.PasswordUpdateDTO) error
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
}

type AuthService interface {
	Register(ctx context.Context, dto domain.RegisterRequest) (int64, error)
	Login(ctx context.Context, dto domain.LoginRequest, userAgent, ip string) (*domain.Tokens, error)
	RefreshTokens(ctx context.Context, refreshToken, userAgent, ip string) (*domain.Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
	ParseToken(ctx context.Context, token string) (int64, domain.UserRole, error)
}

type CatalogService interface {
	CreateService(ctx context.Context, dto domain.CreateServiceDTO) (int64, error)
	GetServiceByID(ctx context.Context, id int64) (*domain.Service, error)
	UpdateService(ctx context.Context, id int64, dto domain.UpdateServiceDTO) error
	DeactivateService(ctx context.Context, id int64) error
	ListServices(ctx context.Context, filter domain.ServiceFilter) ([]domain.Service, int, error)
	UploadServicePhoto(ctx context.Context, id int64, photo []byte, filename string) (string, error)

	CreateCategory(ctx context.Context, name string) (int64, error)
	ListCategories(ctx context.Context) ([]domain.ServiceCategory, error)
}

type BookingService interface {
	// FreeSlots - сетка слотов на дату с отметкой занятости.
	FreeSlots(ctx context.Context, userID int64, date domain.CalendarDate) ([]domain.TimeSlot, error)
}

type AppointmentService interface {
	CreateBooking(ctx context.Context, userID int64, dto domain.CreateBookingDTO) ([]domain.Appointment, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	Cancel(ctx context.Context, userID int64, id int64) error
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error
	List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error)
	// Buckets раскладывает записи пользователя на предстоящие, историю
	// и попавшие в окно напоминания.
	Buckets(ctx context.Context, userID int64) (*domain.AppointmentBuckets, error)
}

type PromotionService interface {
	Create(ctx context.Context, dto domain.CreatePromotionDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Promotion, error)
	Update(ctx context.Context, id int64, dto domain.UpdatePromotionDTO) error
	List(ctx context.Context, filter domain.PromotionFilter) ([]domain.Promotion, error)

	// AvailableForUser - акции, которые пользователь вправе применить хоть
	// к чему-то из выбранного; пустой список items означает «без учета корзины».
	AvailableForUser(ctx context.Context, userID int64, items []domain.SelectionItem) ([]domain.Promotion, error)
	Quote(ctx context.Context, userID int64, items []domain.SelectionItem, promotionID *int64) (*domain.CheckoutQuote, error)
	Redeem(ctx context.Context, userID, promotionID int64) error

	// ListRedeemable - приватный каталог акций, выдаваемых за баллы.
	ListRedeemable(ctx context.Context) ([]domain.Promotion, error)
	ListRedeemed(ctx context.Context, userID int64) ([]domain.RedeemedVoucher, error)
}

type WalletService interface {
	Summary(ctx context.Context, userID int64) (*domain.WalletSummary, error)
	History(ctx context.Context, userID int64, limit, offset int) ([]domain.PointsEntry, error)
	Tiers(ctx context.Context) ([]domain.Tier, error)
	// AccrueForSpending начисляет баллы за оплаченную сумму.
	AccrueForSpending(ctx context.Context, userID int64, amount float64) error
}

type CourseService interface {
	Create(ctx context.Context, dto domain.CreateCourseDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.TreatmentCourse, *domain.CourseProgress, error)
	ListByClient(ctx context.Context, clientID int64, completed *bool) ([]domain.TreatmentCourse, []domain.CourseProgress, error)
	UpdateSession(ctx context.Context, courseID int64, sessionNumber int, dto domain.UpdateCourseSessionDTO) error
}

type ReviewService interface {
	Create(ctx context.Context, userID int64, dto domain.CreateReviewDTO) (int64, error)
	List(ctx context.Context, filter domain.ReviewFilter) ([]domain.Review, error)
}

type PaymentService interface {
	Process(ctx context.Context, userID int64, dto domain.ProcessPaymentDTO) (*domain.PaymentResult, error)
	// ConfirmCheckout завершает платеж по вебхуку платежного провайдера.
	ConfirmCheckout(ctx context.Context, checkoutSessionID string) error
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}
