package models

// ExternalClaims — данные профиля, полученные от внешнего провайдера.
//
// Провайдер отдаёт email в разной форме в зависимости от способа получения
// (introspection ID-токена или userinfo), поэтому все наблюдаемые варианты
// полей представлены одновременно. Claims никогда не сохраняются как есть —
// они потребляются один раз при резолве/создании пользователя.
type ExternalClaims struct {
	Email   string `json:"email"`
	Subject string `json:"sub"`
	Payload struct {
		Email string `json:"email"`
	} `json:"payload"`
	Emails []struct {
		Value string `json:"value"`
	} `json:"emails"`
}
