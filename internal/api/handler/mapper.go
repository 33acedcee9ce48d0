package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/thorsignia/visitor-system/internal/core/domain"
	"github.com/thorsignia/visitor-system/internal/core/ports"
)

// --- Domain → Response ---

func (l Linker) visit(c echo.Context, v *domain.Visit) visitResponse {
	resp := visitResponse{
		ID:                v.ID,
		VisitorID:         v.VisitorID,
		Purpose:           v.Purpose,
		HostName:          v.HostName,
		CheckInTime:       v.CheckInTime,
		CheckOutTime:      v.CheckOutTime,
		DurationMinutes:   v.DurationMinutes,
		DurationFormatted: v.DurationFormatted(),
		IsActive:          v.IsActive(),
		Status:            v.Status(),
		SignatureType:     string(v.SignatureType),
		SignatureData:     v.SignatureData,
		SignatureURL:      l.mediaURL(c, v.SignatureImage),
		Photos:            make([]photoResponse, 0, len(v.Photos)),
	}
	if v.Visitor != nil {
		resp.Visitor = &visitorSummaryResponse{
			ID:    v.Visitor.ID,
			Name:  v.Visitor.Name,
			Email: v.Visitor.Email,
			Phone: v.Visitor.Phone,
		}
		resp.VisitorName = v.Visitor.Name
		resp.VisitorEmail = v.Visitor.Email
		resp.VisitorPhone = v.Visitor.Phone
	}
	for _, p := range v.Photos {
		resp.Photos = append(resp.Photos, photoResponse{
			ID:        p.ID,
			Image:     p.Image,
			ImageURL:  l.mediaURL(c, p.Image),
			CreatedAt: p.CreatedAt,
		})
	}
	return resp
}

func (l Linker) visits(c echo.Context, vs []domain.Visit) []visitResponse {
	out := make([]visitResponse, 0, len(vs))
	for i := range vs {
		out = append(out, l.visit(c, &vs[i]))
	}
	return out
}

func (l Linker) visitor(c echo.Context, d *ports.VisitorDetail) visitorResponse {
	resp := visitorResponse{
		ID:          d.Visitor.ID,
		Name:        d.Visitor.Name,
		Email:       d.Visitor.Email,
		Phone:       d.Visitor.Phone,
		CreatedAt:   d.Visitor.CreatedAt,
		UpdatedAt:   d.Visitor.UpdatedAt,
		TotalVisits: d.Activity.TotalVisits,
		LastVisit:   d.Activity.LastVisit,
	}
	if d.Activity.ActiveVisit != nil {
		active := l.visit(c, d.Activity.ActiveVisit)
		resp.ActiveVisit = &active
	}
	return resp
}

func toAttachments(results []ports.AttachmentResult) []attachmentResponse {
	out := make([]attachmentResponse, 0, len(results))
	for _, r := range results {
		a := attachmentResponse{Kind: string(r.Kind), Stored: r.Stored}
		if r.Err != nil {
			a.Error = r.Err.Error()
		}
		out = append(out, a)
	}
	return out
}

// --- Request → Service input ---

func toCheckInInput(req checkInRequest, photo, signature *ports.Upload) ports.CheckInInput {
	return ports.CheckInInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Purpose:  req.Purpose,
		HostName: req.HostName,
		Photo:    toPhotoInput(req.PhotoData, req.Photo, photo),
		Signature: ports.SignatureInput{
			File:   signature,
			Data:   req.SignatureData,
			Vector: bool(req.IsVectorSignature),
		},
	}
}

// toPhotoInput prefers photo_data over a data URL sent as "photo".
func toPhotoInput(photoData, photo string, file *ports.Upload) ports.PhotoInput {
	dataURL := photoData
	if dataURL == "" {
		dataURL = photo
	}
	return ports.PhotoInput{File: file, DataURL: dataURL}
}
