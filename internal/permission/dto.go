package permission

type RecordResponse struct {
	ID       int64  `json:"id"`
	Role     string `json:"role"`
	Username string `json:"username,omitempty"`
	ModuleID string `json:"module_id"`
	Type     string `json:"permission_type"`
}

type RecordsResponse struct {
	Records []RecordResponse `json:"records"`
}

type UpsertRequest struct {
	Role     string `json:"role"`
	Username string `json:"username,omitempty"`
	ModuleID string `json:"module_id"`
	Type     string `json:"permission_type"`
}

func (r *Record) ToResponse() RecordResponse {
	return RecordResponse{
		ID:       r.ID,
		Role:     string(r.Role),
		Username: r.Username,
		ModuleID: r.ModuleID,
		Type:     string(r.Type),
	}
}

func ToRecordsResponse(records []*Record) RecordsResponse {
	out := RecordsResponse{Records: make([]RecordResponse, 0, len(records))}
	for _, r := range records {
		out.Records = append(out.Records, r.ToResponse())
	}
	return out
}
