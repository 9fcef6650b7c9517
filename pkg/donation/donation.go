package donation

// CounterState es la máquina de estados del contador de mensajes: un
// contador monótono y la marca del último disparo del prompt de donación.
type CounterState struct {
	Count             int `json:"count"`
	LastDonationShown int `json:"last_donation_shown"`
}

// Advance suma uno al contador y reporta si corresponde disparar el prompt:
// exactamente una vez por cada múltiplo del intervalo alcanzado, nunca dos
// veces para el mismo múltiplo.
func (c *CounterState) Advance(interval int) (shouldShow bool) {
	c.Count++
	if c.Count > 0 && c.Count%interval == 0 && c.Count != c.LastDonationShown {
		c.LastDonationShown = c.Count
		return true
	}
	return false
}

// Reset vuelve ambos campos a cero. Sólo por acción explícita del usuario.
func (c *CounterState) Reset() {
	c.Count = 0
	c.LastDonationShown = 0
}

// CounterResponse es la vista expuesta por la API
type CounterResponse struct {
	Count        int  `json:"count"`
	ShowDonation bool `json:"show_donation"`
}
