package services

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/wenlng/go-captcha/v2/rotate"
)

var ErrCaptchaGeneration = errors.New("failed to generate captcha")

// CaptchaService issues and checks rotate captchas shown on the admin login page.
// The client rotates the thumb image until it lines up with the master image and
// submits the angle together with the challenge ID. A challenge is consumed by
// its first verification attempt.
type CaptchaService interface {
	GenerateRotate(ctx context.Context) (*RotateChallenge, error)
	VerifyRotate(ctx context.Context, challengeID string, userAngle float64) bool
}

type RotateChallenge struct {
	ID                string
	MasterImageBase64 string
	ThumbImageBase64  string
	ExpiresAt         time.Time
}

type captchaServiceImpl struct {
	rotator    rotate.Captcha
	challenges *expiringMap[int]
	ttl        time.Duration
	padding    int
}

// NewCaptchaServiceRotate builds a rotate captcha service. padding is the angle
// tolerance in degrees and imgSizePx the square image size.
func NewCaptchaServiceRotate(ttl time.Duration, padding int, imgSizePx int) (CaptchaService, error) {
	if imgSizePx <= 0 {
		imgSizePx = 220
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}

	builder := rotate.NewBuilder(
		rotate.WithImageSquareSize(imgSizePx),
	)
	builder.SetResources(
		rotate.WithImages(clinicBackgrounds(4, imgSizePx)),
	)

	return &captchaServiceImpl{
		rotator:    builder.Make(),
		challenges: newExpiringMap[int](ttl, time.Now),
		ttl:        ttl,
		padding:    padding,
	}, nil
}

func (s *captchaServiceImpl) GenerateRotate(ctx context.Context) (*RotateChallenge, error) {
	captData, err := s.rotator.Generate()
	if err != nil {
		return nil, err
	}

	block := captData.GetData()
	if block == nil {
		return nil, ErrCaptchaGeneration
	}

	masterB64, err := captData.GetMasterImage().ToBase64()
	if err != nil {
		return nil, err
	}
	thumbB64, err := captData.GetThumbImage().ToBase64()
	if err != nil {
		return nil, err
	}

	// opportunistic cleanup keeps the map bounded without a goroutine
	s.challenges.Sweep()

	challengeID := uuid.New().String()
	s.challenges.Set(challengeID, block.Angle)

	return &RotateChallenge{
		ID:                challengeID,
		MasterImageBase64: masterB64,
		ThumbImageBase64:  thumbB64,
		ExpiresAt:         time.Now().Add(s.ttl).UTC(),
	}, nil
}

func (s *captchaServiceImpl) VerifyRotate(ctx context.Context, challengeID string, userAngle float64) bool {
	target, ok := s.challenges.Take(challengeID)
	if !ok {
		return false
	}
	return rotate.Validate(int(math.Round(userAngle)), target, s.padding)
}

// clinicBackgrounds draws n square images of soft diagonal bands with light noise.
func clinicBackgrounds(n, size int) []image.Image {
	palette := []color.RGBA{
		{R: 0x2a, G: 0x9d, B: 0x8f, A: 0xff},
		{R: 0x8e, G: 0xca, B: 0xe6, A: 0xff},
		{R: 0xe9, G: 0xf5, B: 0xf2, A: 0xff},
		{R: 0x26, G: 0x46, B: 0x53, A: 0xff},
	}
	if n <= 0 {
		n = 1
	}
	imgs := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		img := image.NewRGBA(image.Rect(0, 0, size, size))
		band := size/6 + i*7
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				c := palette[((x+y)/band+i)%len(palette)]
				jitter := uint8(rand.Intn(24))
				img.Set(x, y, color.RGBA{R: c.R ^ jitter, G: c.G, B: c.B ^ (jitter / 2), A: 0xff})
			}
		}
		imgs = append(imgs, img)
	}
	return imgs
}
