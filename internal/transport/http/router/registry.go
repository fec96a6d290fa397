package router

import (
	"sort"

	"community-events/internal/transport/http/ez"
)

// 模块可选择实现其中一个或多个接口
type APIModule interface{ MountAPI(ez.EZ) }     // 挂在 /api/v1
type AdminModule interface{ MountAdmin(ez.EZ) } // 挂在 /admin/v1
type RootModule interface{ MountRoot(ez.EZ) }   // 挂在根路径（短链、图片、OAuth 回调）

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

// Registry 按类型分发模块；每个引擎一份，不用全局状态
type Registry struct {
	api   []APIModule
	admin []AdminModule
	root  []RootModule
}

func NewRegistry(mods ...any) *Registry {
	r := &Registry{}
	for _, m := range mods {
		r.Register(m)
	}
	return r
}

// Register 统一注册入口：根据类型断言分发
func (r *Registry) Register(mod any) {
	if m, ok := mod.(APIModule); ok {
		r.api = append(r.api, m)
	}
	if m, ok := mod.(AdminModule); ok {
		r.admin = append(r.admin, m)
	}
	if m, ok := mod.(RootModule); ok {
		r.root = append(r.root, m)
	}
}

func (r *Registry) MountAPI(e ez.EZ) {
	for _, m := range sorted(r.api) {
		m.MountAPI(e)
	}
}

func (r *Registry) MountAdmin(e ez.EZ) {
	for _, m := range sorted(r.admin) {
		m.MountAdmin(e)
	}
}

func (r *Registry) MountRoot(e ez.EZ) {
	for _, m := range sorted(r.root) {
		m.MountRoot(e)
	}
}

func sorted[M any](mods []M) []M {
	out := append([]M(nil), mods...)
	sort.SliceStable(out, func(i, j int) bool {
		return priorityOf(out[i]) < priorityOf(out[j])
	})
	return out
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
