package http

import "net/http"

// GET /healthz: vivo.
func (d *Deps) Healthz(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz: listo para recibir tráfico (dependencias arriba).
func (d *Deps) Readyz(w http.ResponseWriter, r *http.Request) {
	if d.Ready != nil {
		if err := d.Ready(r.Context()); err != nil {
			WriteError(w, http.StatusServiceUnavailable, "NOT_READY", err.Error())
			return
		}
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
