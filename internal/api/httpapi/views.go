package httpapi

import (
	"encoding/base64"
	"time"

	"github.com/louisbranch/appregistry/internal/pkginfo"
)

type packageView struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	VersionCode int64     `json:"version_code"`
	VersionName string    `json:"version_name"`
	TargetSDK   int32     `json:"target_sdk"`
	Debuggable  bool      `json:"debuggable"`
	Signatures  []string  `json:"signatures,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type packageListView struct {
	Packages []packageView `json:"packages"`
	Limit    int           `json:"limit"`
	Offset   int           `json:"offset"`
}

type digestView struct {
	Name      string `json:"name"`
	Algorithm string `json:"algorithm"`
	Digest    string `json:"digest"`
}

type errorResponse struct {
	Error            string            `json:"error"`
	ErrorDescription string            `json:"error_description,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

type putPackageRequest struct {
	Label       string   `json:"label"`
	VersionCode int64    `json:"version_code"`
	VersionName string   `json:"version_name"`
	TargetSDK   int32    `json:"target_sdk"`
	Debuggable  bool     `json:"debuggable"`
	Signatures  []string `json:"signatures"`
}

func packageToView(info *pkginfo.Info) packageView {
	view := packageView{
		Name:        info.PackageName,
		Label:       info.Label,
		VersionCode: info.VersionCode,
		VersionName: info.VersionName,
		TargetSDK:   info.TargetSDK,
		Debuggable:  info.Debuggable(),
		UpdatedAt:   info.UpdatedAt,
	}
	for _, signature := range info.Signatures {
		view.Signatures = append(view.Signatures, base64.StdEncoding.EncodeToString(signature))
	}
	return view
}

func (r putPackageRequest) toInfo(name string, now time.Time) (pkginfo.Info, error) {
	info := pkginfo.Info{
		PackageName: name,
		Label:       r.Label,
		VersionCode: r.VersionCode,
		VersionName: r.VersionName,
		TargetSDK:   r.TargetSDK,
		UpdatedAt:   now,
	}
	if r.Debuggable {
		info.Flags |= pkginfo.FlagDebuggable
	}
	for _, encoded := range r.Signatures {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return pkginfo.Info{}, err
		}
		info.Signatures = append(info.Signatures, decoded)
	}
	return info, nil
}
