package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HTTPErrorHandler is the single translation point for errors that
// escape a handler. Every failure becomes {success:false, message};
// when dev is true the internal error string is attached as well, so
// production responses never leak driver or provider detail while local
// debugging keeps the full picture.
func HTTPErrorHandler(dev bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Internal server error"

		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
			if s, ok := he.Message.(string); ok {
				message = s
			} else {
				message = http.StatusText(status)
			}
		}

		body := echo.Map{"success": false, "message": message}
		if dev {
			body["error"] = err.Error()
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		if jsonErr := c.JSON(status, body); jsonErr != nil {
			c.Logger().Error(jsonErr)
		}
	}
}
