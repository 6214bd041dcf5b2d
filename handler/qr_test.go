package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vincent-petithory/dataurl"
	"go.uber.org/mock/gomock"

	"wa-web-bridge/whatsapp"
)

func TestRenderQRDataURL(t *testing.T) {
	t.Run("should render a png data url", func(t *testing.T) {
		req := require.New(t)

		url, err := RenderQRDataURL("2@qJ3x,AbCdEf==,GhIjKl==,MnOpQr==")

		req.NoError(err)
		req.True(strings.HasPrefix(url, "data:image/png;base64,"))
		parsed, err := dataurl.DecodeString(url)
		req.NoError(err)
		req.Equal("image/png", parsed.ContentType())
		req.NotEmpty(parsed.Data)
	})

	t.Run("should fail on an empty code", func(t *testing.T) {
		_, err := RenderQRDataURL("")
		require.Error(t, err)
	})
}

func TestHandleQR(t *testing.T) {
	t.Run("should return the next qr code as a data url", func(t *testing.T) {
		req := require.New(t)
		h, wa, _ := newTestHandler(t, Options{})
		wa.EXPECT().IsReady().Return(false)
		wa.EXPECT().NextQR(gomock.Any()).Return("2@abc,def,ghi", nil)

		rec := serve(h, "/qr")

		req.Equal(http.StatusOK, rec.Code)
		req.True(strings.HasPrefix(decode[qrResponse](t, rec).QRCode, "data:image/png;base64,"))
	})

	t.Run("should refuse immediately once connected", func(t *testing.T) {
		req := require.New(t)
		h, wa, _ := newTestHandler(t, Options{})
		wa.EXPECT().IsReady().Return(true)
		wa.EXPECT().NextQR(gomock.Any()).Times(0)

		rec := serve(h, "/qr")

		req.Equal(http.StatusConflict, rec.Code)
		req.Equal("WhatsApp Web is already connected", decode[errorResponse](t, rec).Error)
	})

	t.Run("should refuse when the client connects while waiting", func(t *testing.T) {
		h, wa, _ := newTestHandler(t, Options{})
		wa.EXPECT().IsReady().Return(false)
		wa.EXPECT().NextQR(gomock.Any()).Return("", whatsapp.ErrAlreadyReady)

		rec := serve(h, "/qr")

		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("should report an unavailable qr code without waiting", func(t *testing.T) {
		cases := map[error]string{
			whatsapp.ErrAlreadyPaired: "WhatsApp Web is paired but not connected",
			whatsapp.ErrNoPairing:     "No QR pairing in progress",
		}
		for cause, want := range cases {
			req := require.New(t)
			h, wa, _ := newTestHandler(t, Options{})
			wa.EXPECT().IsReady().Return(false)
			wa.EXPECT().NextQR(gomock.Any()).Return("", cause)

			rec := serve(h, "/qr")

			req.Equal(http.StatusServiceUnavailable, rec.Code, cause)
			req.Equal(want, decode[errorResponse](t, rec).Error)
		}
	})

	t.Run("should answer a cancelled wait explicitly", func(t *testing.T) {
		h, wa, _ := newTestHandler(t, Options{})
		wa.EXPECT().IsReady().Return(false)
		wa.EXPECT().NextQR(gomock.Any()).Return("", context.Canceled)

		rec := serve(h, "/qr")

		require.Equal(t, http.StatusRequestTimeout, rec.Code)
	})

	t.Run("should time out when configured to", func(t *testing.T) {
		req := require.New(t)
		h, wa, _ := newTestHandler(t, Options{QRWaitTimeout: 10 * time.Millisecond})
		wa.EXPECT().IsReady().Return(false)
		wa.EXPECT().NextQR(gomock.Any()).DoAndReturn(func(ctx context.Context) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})

		rec := serve(h, "/qr")

		req.Equal(http.StatusGatewayTimeout, rec.Code)
		req.Equal("Timed out waiting for QR code", decode[errorResponse](t, rec).Error)
	})

	t.Run("should answer in plain text when the code cannot be rendered", func(t *testing.T) {
		req := require.New(t)
		h, wa, _ := newTestHandler(t, Options{})
		wa.EXPECT().IsReady().Return(false)
		wa.EXPECT().NextQR(gomock.Any()).Return("", nil)

		rec := serve(h, "/qr")

		req.Equal(http.StatusInternalServerError, rec.Code)
		req.Equal("Error generating QR code\n", rec.Body.String())
	})

	t.Run("should keep concurrent requests pending until the next code", func(t *testing.T) {
		req := require.New(t)
		h, wa, _ := newTestHandler(t, Options{})
		emitted := make(chan struct{})
		wa.EXPECT().IsReady().Return(false).Times(2)
		wa.EXPECT().NextQR(gomock.Any()).DoAndReturn(func(ctx context.Context) (string, error) {
			select {
			case <-emitted:
				return "2@next,code", nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}).Times(2)

		server := httptest.NewServer(h.SetupRoutes())
		defer server.Close()

		var wg sync.WaitGroup
		codes := make(chan int, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				resp, err := http.Get(server.URL + "/qr")
				if err != nil {
					return
				}
				resp.Body.Close()
				codes <- resp.StatusCode
			}()
		}

		select {
		case <-codes:
			req.Fail("a /qr request resolved before any code was emitted")
		case <-time.After(50 * time.Millisecond):
		}

		close(emitted)
		wg.Wait()
		close(codes)

		var got []int
		for code := range codes {
			got = append(got, code)
		}
		req.Equal([]int{http.StatusOK, http.StatusOK}, got)
	})
}
