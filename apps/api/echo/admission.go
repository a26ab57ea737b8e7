package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shoyeabaslam/kcet-cams-sub000/core/admission"
)

type admissionApi struct {
	svc *admission.Service
}

func registerAdmissionAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *admission.Service) {
	api := admissionApi{svc: svc}

	ag := g.Group("", jwt, roleMiddleware(RoleOfficer, RoleAdmin))

	sg := ag.Group("/students")
	sg.POST("", api.register)
	sg.GET("", api.query)

	// detail endpoints
	dg := sg.Group("/:id")
	dg.GET("", api.overview)
	dg.PUT("/offering", api.assignOffering)
	dg.PUT("/documents", api.declareDocuments)
	dg.GET("/documents", api.listDocuments)
	dg.POST("/payments", api.recordPayment)
	dg.GET("/payments", api.listPayments)
	dg.POST("/adjustments", api.recordAdjustment, adminMiddleware())
	dg.GET("/history", api.listHistory)
	dg.POST("/recompute", api.recompute, adminMiddleware())

	ag.GET("/document-types", api.listDocumentTypes)
	ag.POST("/document-types", api.saveDocumentType, adminMiddleware())
	ag.PUT("/fee-structures", api.saveFeeStructure, adminMiddleware())
	ag.GET("/reports/status-counts", api.statusCounts)
}

// Handlers

func (api *admissionApi) register(ctx echo.Context) error {
	by, err := officerID(ctx)
	if err != nil {
		return err
	}
	var data admission.NewStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	data.CreatedBy = by

	res, err := api.svc.RegisterApplicant(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering applicant")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *admissionApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)
	paging := new(Paging)
	paging.Bind(ctx)

	filter := admission.QueryFilter{
		Status:       admission.Status(ctx.QueryParam("status")),
		CourseCode:   ctx.QueryParam("course"),
		AcademicYear: ctx.QueryParam("year"),
		Search:       ctx.QueryParam("search"),
		Orderings:    ordering.Orderings,
		Limit:        paging.Limit,
		Offset:       paging.Offset,
	}
	students, err := api.svc.QueryStudents(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []admission.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *admissionApi) overview(ctx echo.Context) error {
	ov, err := api.svc.GetOverview(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting student overview")
	}
	return ctx.JSON(http.StatusOK, ov)
}

func (api *admissionApi) assignOffering(ctx echo.Context) error {
	by, err := officerID(ctx)
	if err != nil {
		return err
	}
	var data admission.CourseOffering
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CourseOffering")
	}

	res, err := api.svc.AssignCourseOffering(ctx.Request().Context(), ctx.Param("id"), data, by)
	if err != nil {
		return errors.Wrap(err, "assigning course offering")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *admissionApi) declareDocuments(ctx echo.Context) error {
	by, err := officerID(ctx)
	if err != nil {
		return err
	}
	var data admission.DocumentDeclarations
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DocumentDeclarations")
	}

	res, err := api.svc.DeclareDocuments(ctx.Request().Context(), ctx.Param("id"), data, by)
	if err != nil {
		return errors.Wrap(err, "declaring documents")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *admissionApi) listDocuments(ctx echo.Context) error {
	docs, err := api.svc.ListDocuments(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing documents")
	}
	if docs == nil {
		docs = []admission.DocumentRecord{}
	}
	return ctx.JSON(http.StatusOK, docs)
}

func (api *admissionApi) recordPayment(ctx echo.Context) error {
	by, err := officerID(ctx)
	if err != nil {
		return err
	}
	var data admission.NewPayment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	data.StudentID = ctx.Param("id")
	data.RecordedBy = by

	res, err := api.svc.RecordPayment(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording payment")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *admissionApi) listPayments(ctx echo.Context) error {
	payments, err := api.svc.ListPayments(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing payments")
	}
	if payments == nil {
		payments = []admission.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *admissionApi) recordAdjustment(ctx echo.Context) error {
	by, err := officerID(ctx)
	if err != nil {
		return err
	}
	var data admission.NewAdjustment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAdjustment")
	}
	data.StudentID = ctx.Param("id")
	data.RecordedBy = by

	res, err := api.svc.RecordAdjustment(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording adjustment")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *admissionApi) listHistory(ctx echo.Context) error {
	history, err := api.svc.ListHistory(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing status history")
	}
	if history == nil {
		history = []admission.HistoryEntry{}
	}
	return ctx.JSON(http.StatusOK, history)
}

func (api *admissionApi) recompute(ctx echo.Context) error {
	by, err := officerID(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.Recompute(ctx.Request().Context(), ctx.Param("id"), by)
	if err != nil {
		return errors.Wrap(err, "recomputing student")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *admissionApi) listDocumentTypes(ctx echo.Context) error {
	types, err := api.svc.ListDocumentTypes(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing document types")
	}
	if types == nil {
		types = []admission.DocumentType{}
	}
	return ctx.JSON(http.StatusOK, types)
}

func (api *admissionApi) saveDocumentType(ctx echo.Context) error {
	var data admission.DocumentType
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DocumentType")
	}
	dt, err := api.svc.SaveDocumentType(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "saving document type")
	}
	return ctx.JSON(http.StatusOK, dt)
}

func (api *admissionApi) saveFeeStructure(ctx echo.Context) error {
	var data admission.FeeStructure
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FeeStructure")
	}
	fs, err := api.svc.SaveFeeStructure(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "saving fee structure")
	}
	return ctx.JSON(http.StatusOK, fs)
}

func (api *admissionApi) statusCounts(ctx echo.Context) error {
	counts, err := api.svc.CountByStatus(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "counting students by status")
	}
	return ctx.JSON(http.StatusOK, counts)
}
