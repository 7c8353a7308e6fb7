package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/karo/core"
	"github.com/trezcool/karo/core/fee"
)

var errDuplicatePayment = echo.NewHTTPError(
	http.StatusConflict,
	"a similar payment was already recorded against this charge; re-submit with duplicate_ok=true to record it anyway",
)

type feeApi struct {
	svc        *fee.Service
	conf       *core.Config
	validate   *validator.Validate
	translator ut.Translator
}

func registerFeeAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := feeApi{
		svc:        deps.FeeSvc,
		conf:       deps.Conf,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	fg := g.Group("/fees", jwt)
	fg.GET("/methods", api.queryMethods)

	// per-student ledger endpoints
	sg := g.Group("/students/:id", jwt, ownStudentOrAdminMiddleware("id"))
	sg.GET("/charges", api.listCharges)
	sg.GET("/charges/payable", api.listPayableCharges)
	sg.GET("/summary", api.summary)
	sg.POST("/charges", api.postCharge, adminMiddleware())

	// detail endpoints
	dg := sg.Group("/charges/:feeId")
	dg.GET("", api.retrieveCharge)
	dg.POST("/payments", api.applyPayment, adminMiddleware())
	dg.PUT("/payments/:paymentId/notes", api.updatePaymentNotes, adminMiddleware())

	// cross-student reporting, ADMIN PORTAL only
	rg := g.Group("/reports", jwt, adminMiddleware())
	rg.GET("/fee-types", api.queryTypeAggregates)
	rg.GET("/fee-types/charges", api.queryTypeCharges)
}

// Handlers

func (api *feeApi) postCharge(ctx echo.Context) error {
	var data fee.NewCharge
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCharge")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	charge, err := api.svc.PostCharge(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "posting charge")
	}
	return ctx.JSON(http.StatusCreated, charge)
}

func (api *feeApi) listCharges(ctx echo.Context) error {
	charges, err := api.svc.ListCharges(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing charges")
	}
	if charges == nil {
		charges = []fee.Charge{}
	}
	return ctx.JSON(http.StatusOK, charges)
}

func (api *feeApi) listPayableCharges(ctx echo.Context) error {
	charges, err := api.svc.ListPayableCharges(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing payable charges")
	}
	return ctx.JSON(http.StatusOK, charges)
}

func (api *feeApi) retrieveCharge(ctx echo.Context) error {
	charge, err := api.svc.GetCharge(ctx.Request().Context(), ctx.Param("id"), ctx.Param("feeId"))
	if err != nil {
		return errors.Wrap(err, "finding charge by ID")
	}
	return ctx.JSON(http.StatusOK, charge)
}

func (api *feeApi) summary(ctx echo.Context) error {
	summary, err := api.svc.Summary(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "summarizing charges")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *feeApi) applyPayment(ctx echo.Context) error {
	var data ApplyPaymentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ApplyPaymentRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	studentID, feeID := ctx.Param("id"), ctx.Param("feeId")

	// recording payments is not idempotent; warn on a likely double-entry
	// unless the recorder explicitly confirms it.
	if !data.DuplicateOK {
		charge, err := api.svc.GetCharge(reqCtx, studentID, feeID)
		if err != nil {
			return errors.Wrap(err, "finding charge by ID")
		}
		if dup := fee.FindSimilarPayment(charge, data.NewPayment); dup != nil {
			return errDuplicatePayment
		}
	}

	charge, err := api.svc.ApplyPayment(reqCtx, studentID, feeID, data.NewPayment)
	if err != nil {
		return errors.Wrap(err, "applying payment")
	}
	return ctx.JSON(http.StatusCreated, charge)
}

func (api *feeApi) updatePaymentNotes(ctx echo.Context) error {
	var data fee.UpdatePaymentNotes
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePaymentNotes")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	pmt, err := api.svc.UpdatePaymentNotes(
		ctx.Request().Context(), ctx.Param("id"), ctx.Param("feeId"), ctx.Param("paymentId"), data,
	)
	if err != nil {
		return errors.Wrap(err, "updating payment notes")
	}
	return ctx.JSON(http.StatusOK, pmt)
}

func (api *feeApi) queryTypeAggregates(ctx echo.Context) error {
	var query TypeAggregatesRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to TypeAggregatesRequest")
	}
	if err := query.Validate(); err != nil {
		return err
	}

	aggs, err := api.svc.TypeAggregates(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "aggregating fee types")
	}
	query.SortState().Sort(aggs)
	return ctx.JSON(http.StatusOK, aggs)
}

func (api *feeApi) queryTypeCharges(ctx echo.Context) error {
	var query TypeChargesRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to TypeChargesRequest")
	}
	if err := query.Validate(api.validate); err != nil {
		return err
	}

	charges, total, err := api.svc.TypeCharges(
		ctx.Request().Context(), query.Description, query.Search, query.Page,
	)
	if err != nil {
		return errors.Wrap(err, "querying fee type charges")
	}
	return ctx.JSON(http.StatusOK, PagedChargesResponse{
		Results:  charges,
		Count:    total,
		Page:     query.Page,
		PageSize: api.conf.ReportPageSize,
	})
}

func (api *feeApi) queryMethods(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, fee.Methods)
}
