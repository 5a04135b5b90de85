// internal/services/address_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/openmall/shop-backend/internal/models"
)

type AddressServiceTestSuite struct {
	suite.Suite
	db        *gorm.DB
	addresses *AddressService
	user      models.User
}

func (s *AddressServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.addresses = NewAddressService(s.db)
	s.user = createTestUser(s.T(), s.db, "shopper")
}

func (s *AddressServiceTestSuite) defaultCount(userID uuid.UUID) int64 {
	var count int64
	s.Require().NoError(s.db.Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Count(&count).Error)
	return count
}

func (s *AddressServiceTestSuite) TestSingleDefaultInvariant() {
	first, err := s.addresses.Create(s.user.ID, &AddressRequest{
		Recipient: "Jane", Phone: "555-0100", Detail: "12 Main St", IsDefault: true,
	})
	s.Require().NoError(err)

	second, err := s.addresses.Create(s.user.ID, &AddressRequest{
		Recipient: "Jane", Phone: "555-0100", Detail: "99 Oak Ave", IsDefault: true,
	})
	s.Require().NoError(err)

	// Creating a new default cleared the old one.
	s.EqualValues(1, s.defaultCount(s.user.ID))
	var reloadedFirst models.Address
	s.Require().NoError(s.db.First(&reloadedFirst, "id = ?", first.ID).Error)
	s.False(reloadedFirst.IsDefault)

	// SetDefault flips back.
	_, err = s.addresses.SetDefault(s.user.ID, first.ID)
	s.Require().NoError(err)
	s.EqualValues(1, s.defaultCount(s.user.ID))

	// Fresh destination struct: reusing one would smuggle its primary key
	// into the WHERE clause.
	var reloadedSecond models.Address
	s.Require().NoError(s.db.First(&reloadedSecond, "id = ?", second.ID).Error)
	s.False(reloadedSecond.IsDefault)
}

func (s *AddressServiceTestSuite) TestOwnershipChecks() {
	address, err := s.addresses.Create(s.user.ID, &AddressRequest{
		Recipient: "Jane", Phone: "555-0100", Detail: "12 Main St",
	})
	s.Require().NoError(err)

	other := createTestUser(s.T(), s.db, "other")
	_, err = s.addresses.SetDefault(other.ID, address.ID)
	s.ErrorIs(err, ErrAddressNotFound)
	s.ErrorIs(s.addresses.Delete(other.ID, address.ID), ErrAddressNotFound)

	s.Require().NoError(s.addresses.Delete(s.user.ID, address.ID))
}

func TestAddressServiceSuite(t *testing.T) {
	suite.Run(t, new(AddressServiceTestSuite))
}
