package services_test

import (
	"testing"

	"subcanvas/internal/models"
	"subcanvas/internal/repositories"
	"subcanvas/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_UpdateUser_Password(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo)

	localUser := func() *models.User {
		return &models.User{
			ID:           "user-1",
			Email:        "user@example.com",
			PasswordHash: hashPassword(t, "old-password"),
			AuthProvider: models.ProviderLocal,
			Status:       models.StatusActive,
		}
	}

	// Correct current password lets the change through
	mockRepo.On("GetByID", "user-1").Return(localUser(), nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		user := args.Get(0).(*models.User)
		err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("new-password"))
		assert.NoError(t, err)
	}).Return(nil).Once()
	updated, err := service.UpdateUser("user-1", services.UpdateUserInput{
		Password:        "new-password",
		CurrentPassword: "old-password",
	})
	assert.NoError(t, err)
	assert.Empty(t, updated.PasswordHash)
	mockRepo.AssertExpectations(t)

	// Wrong current password is rejected
	mockRepo.On("GetByID", "user-1").Return(localUser(), nil).Once()
	updated, err = service.UpdateUser("user-1", services.UpdateUserInput{
		Password:        "new-password",
		CurrentPassword: "wrong",
	})
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, services.ErrBadRequest)
	mockRepo.AssertExpectations(t)

	// Missing current password is rejected
	mockRepo.On("GetByID", "user-1").Return(localUser(), nil).Once()
	updated, err = service.UpdateUser("user-1", services.UpdateUserInput{Password: "new-password"})
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, services.ErrBadRequest)
	mockRepo.AssertExpectations(t)

	// Social accounts cannot set a password at all
	socialUser := &models.User{
		ID:           "user-2",
		AuthProvider: models.ProviderKakao,
		Status:       models.StatusActive,
	}
	mockRepo.On("GetByID", "user-2").Return(socialUser, nil).Once()
	updated, err = service.UpdateUser("user-2", services.UpdateUserInput{
		Password:        "new-password",
		CurrentPassword: "anything",
	})
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, services.ErrBadRequest)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateUser_Nickname(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo)

	user := &models.User{ID: "user-1", Nickname: "before", AuthProvider: models.ProviderLocal}
	mockRepo.On("GetByID", "user-1").Return(user, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.User")).Return(nil).Once()

	updated, err := service.UpdateUser("user-1", services.UpdateUserInput{Nickname: "after"})
	assert.NoError(t, err)
	assert.Equal(t, "after", updated.Nickname)
	mockRepo.AssertExpectations(t)
}

func TestUserService_DeleteUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo)

	localUser := func() *models.User {
		return &models.User{
			ID:           "user-1",
			PasswordHash: hashPassword(t, "secret"),
			AuthProvider: models.ProviderLocal,
		}
	}

	// LOCAL account with the right password is deleted
	mockRepo.On("GetByID", "user-1").Return(localUser(), nil).Once()
	mockRepo.On("Delete", "user-1").Return(nil).Once()
	err := service.DeleteUser("user-1", "secret")
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	// Wrong password is forbidden
	mockRepo.On("GetByID", "user-1").Return(localUser(), nil).Once()
	err = service.DeleteUser("user-1", "wrong")
	assert.ErrorIs(t, err, services.ErrForbidden)
	mockRepo.AssertExpectations(t)

	// Missing password is a bad request
	mockRepo.On("GetByID", "user-1").Return(localUser(), nil).Once()
	err = service.DeleteUser("user-1", "")
	assert.ErrorIs(t, err, services.ErrBadRequest)
	mockRepo.AssertExpectations(t)

	// Social accounts delete without a password check
	socialUser := &models.User{ID: "user-2", AuthProvider: models.ProviderGoogle}
	mockRepo.On("GetByID", "user-2").Return(socialUser, nil).Once()
	mockRepo.On("Delete", "user-2").Return(nil).Once()
	err = service.DeleteUser("user-2", "")
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestUserService_DeleteSnsAccount(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo)

	account := &models.SnsAccount{ID: 7, UserID: "user-1"}

	// Owner can delete
	mockRepo.On("GetSnsAccountByID", uint(7)).Return(account, nil).Once()
	mockRepo.On("DeleteSnsAccount", uint(7)).Return(nil).Once()
	err := service.DeleteSnsAccount("user-1", 7)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	// Anyone else is forbidden
	mockRepo.On("GetSnsAccountByID", uint(7)).Return(account, nil).Once()
	err = service.DeleteSnsAccount("user-2", 7)
	assert.ErrorIs(t, err, services.ErrForbidden)
	mockRepo.AssertExpectations(t)

	// Missing account is not found
	mockRepo.On("GetSnsAccountByID", uint(99)).Return(nil, repositories.ErrNotFound).Once()
	err = service.DeleteSnsAccount("user-1", 99)
	assert.ErrorIs(t, err, services.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateUserStatus(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo)

	user := &models.User{ID: "user-1", Status: models.StatusActive}
	mockRepo.On("GetByID", "user-1").Return(user, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.User")).Return(nil).Once()

	updated, err := service.UpdateUserStatus("user-1", models.StatusBanned)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusBanned, updated.Status)
	mockRepo.AssertExpectations(t)

	mockRepo.On("GetByID", "ghost").Return(nil, repositories.ErrNotFound).Once()
	updated, err = service.UpdateUserStatus("ghost", models.StatusDormant)
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, services.ErrNotFound)
	mockRepo.AssertExpectations(t)
}
