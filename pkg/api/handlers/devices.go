package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/switchboard/pkg/api/types"
	"github.com/urmzd/switchboard/pkg/db"
	"github.com/urmzd/switchboard/pkg/device"
	"github.com/urmzd/switchboard/pkg/device/schema"
)

// DevicesHandler handles the /device endpoints. Change notifications are
// not sent from here: the toggling panel emits set_device on its socket and
// SocketHandler relays it to the other panels.
type DevicesHandler struct {
	store     db.DeviceStore
	validator *schema.Validator
}

// NewDevicesHandler creates a new devices handler
func NewDevicesHandler(store db.DeviceStore, validator *schema.Validator) *DevicesHandler {
	return &DevicesHandler{store: store, validator: validator}
}

// ListDevices handles GET /device/all
// @Summary      List all devices
// @Description  Returns every device in id order
// @Tags         devices
// @Produce      json
// @Success      200  {object}  types.ListDevicesResponse
// @Failure      500  {object}  types.ErrorResponse  "Store error"
// @Router       /device/all [get]
func (h *DevicesHandler) ListDevices(c *gin.Context) {
	devices, err := h.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error:   "store_error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.ListDevicesResponse{
		Data: types.DeviceList{Devices: devices},
	})
}

// GetDevice handles GET /device/:id
// @Summary      Get device details
// @Tags         devices
// @Produce      json
// @Param        id   path      int  true  "Device ID"
// @Success      200  {object}  types.DeviceResponse
// @Failure      400  {object}  types.ErrorResponse  "Invalid id"
// @Failure      404  {object}  types.ErrorResponse  "Device not found"
// @Failure      500  {object}  types.ErrorResponse  "Store error"
// @Router       /device/{id} [get]
func (h *DevicesHandler) GetDevice(c *gin.Context) {
	id, ok := deviceID(c)
	if !ok {
		return
	}

	d, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.DeviceResponse{
		Data: types.DeviceEnvelope{Device: *d},
	})
}

// UpdateDevice handles PATCH /device/:id
// @Summary      Set device status
// @Description  Sets the on/off status of a device
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        id       path      int                        true  "Device ID"
// @Param        request  body      types.UpdateDeviceRequest  true  "Desired status"
// @Success      200      {object}  types.DeviceResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      404      {object}  types.ErrorResponse  "Device not found"
// @Failure      500      {object}  types.ErrorResponse  "Store error"
// @Router       /device/{id} [patch]
func (h *DevicesHandler) UpdateDevice(c *gin.Context) {
	id, ok := deviceID(c)
	if !ok {
		return
	}

	var req map[string]any
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	if err := h.validator.Validate(schema.ToggleRequest, req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	status, _ := req["status"].(bool)
	d, err := h.store.SetStatus(c.Request.Context(), id, status)
	if err != nil {
		storeError(c, err)
		return
	}

	if name, _ := req["name"].(string); name != "" && name != d.Name {
		log.Debug().Int("id", id).Str("claimed", name).Str("stored", d.Name).Msg("Toggle name does not match device")
	}

	log.Info().Int("id", d.ID).Str("device", d.Name).Bool("status", d.Status).Msg("Device updated")

	c.JSON(http.StatusOK, types.DeviceResponse{
		Data: types.DeviceEnvelope{Device: *d},
	})
}

// deviceID parses the :id path parameter, writing a 400 on failure.
func deviceID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "invalid_id",
			Message: "Device id must be an integer",
		})
		return 0, false
	}
	return id, true
}

func storeError(c *gin.Context, err error) {
	if errors.Is(err, device.ErrNotFound) {
		c.JSON(http.StatusNotFound, types.ErrorResponse{
			Error:   "not_found",
			Message: "Device not found",
		})
		return
	}
	c.JSON(http.StatusInternalServerError, types.ErrorResponse{
		Error:   "store_error",
		Message: err.Error(),
	})
}
